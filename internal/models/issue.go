package models

import "time"

// IssueSeverity ranks operational issues.
type IssueSeverity string

const (
	SeverityLow    IssueSeverity = "low"
	SeverityMedium IssueSeverity = "medium"
	SeverityHigh   IssueSeverity = "high"
)

// IssueStatus is either active or resolved.
type IssueStatus string

const (
	IssueActive   IssueStatus = "active"
	IssueResolved IssueStatus = "resolved"
)

// IssueType names the cause of an operational issue.
type IssueType string

const (
	IssueWeather    IssueType = "weather"
	IssueTraffic    IssueType = "traffic"
	IssueMechanical IssueType = "mechanical"
	IssueSystem     IssueType = "system"
)

// Issue is an operational incident that may affect several parcels.
type Issue struct {
	ID              int           `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Severity        IssueSeverity `json:"severity"`
	Status          IssueStatus   `json:"status"`
	IssueType       IssueType     `json:"issueType"`
	AffectedParcels []int         `json:"affectedParcels,omitempty"`
	Location        *string       `json:"location,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	ResolvedAt      *time.Time    `json:"resolvedAt"`
}

// IssueInput carries the fields for creating an issue. An empty Status defaults to active.
type IssueInput struct {
	Title           string
	Description     string
	Severity        IssueSeverity
	Status          IssueStatus
	IssueType       IssueType
	AffectedParcels []int
	Location        *string
}

// IssuePatch is a shallow partial update. A nil AffectedParcels slice means "unchanged".
type IssuePatch struct {
	Title           *string
	Description     *string
	Severity        *IssueSeverity
	Status          *IssueStatus
	IssueType       *IssueType
	AffectedParcels []int
	Location        *string
}

// Clone returns a deep copy of the issue.
func (i Issue) Clone() Issue {
	if i.AffectedParcels != nil {
		affected := make([]int, len(i.AffectedParcels))
		copy(affected, i.AffectedParcels)
		i.AffectedParcels = affected
	}
	i.Location = cloneString(i.Location)
	i.ResolvedAt = cloneTime(i.ResolvedAt)
	return i
}
