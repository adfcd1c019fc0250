package dto

import "github.com/noah-isme/logistics-tracker-api/internal/models"

// CreateIssueRequest reports a new operational issue.
type CreateIssueRequest struct {
	Title           string               `json:"title" validate:"required,max=255"`
	Description     string               `json:"description" validate:"required,max=4000"`
	Severity        models.IssueSeverity `json:"severity" validate:"required,oneof=low medium high"`
	Status          models.IssueStatus   `json:"status" validate:"omitempty,oneof=active resolved"`
	IssueType       models.IssueType     `json:"issueType" validate:"required,oneof=weather traffic mechanical system"`
	AffectedParcels []int                `json:"affectedParcels" validate:"omitempty,dive,gt=0"`
	Location        *string              `json:"location" validate:"omitempty,max=255"`
}

// ToInput converts the request into a storage input.
func (r CreateIssueRequest) ToInput() models.IssueInput {
	return models.IssueInput{
		Title:           r.Title,
		Description:     r.Description,
		Severity:        r.Severity,
		Status:          r.Status,
		IssueType:       r.IssueType,
		AffectedParcels: r.AffectedParcels,
		Location:        r.Location,
	}
}

// UpdateIssueRequest is a partial issue update.
type UpdateIssueRequest struct {
	Title           *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Description     *string               `json:"description" validate:"omitempty,max=4000"`
	Severity        *models.IssueSeverity `json:"severity" validate:"omitempty,oneof=low medium high"`
	Status          *models.IssueStatus   `json:"status" validate:"omitempty,oneof=active resolved"`
	IssueType       *models.IssueType     `json:"issueType" validate:"omitempty,oneof=weather traffic mechanical system"`
	AffectedParcels []int                 `json:"affectedParcels" validate:"omitempty,dive,gt=0"`
	Location        *string               `json:"location" validate:"omitempty,max=255"`
}

// ToPatch converts the request into a storage patch.
func (r UpdateIssueRequest) ToPatch() models.IssuePatch {
	return models.IssuePatch{
		Title:           r.Title,
		Description:     r.Description,
		Severity:        r.Severity,
		Status:          r.Status,
		IssueType:       r.IssueType,
		AffectedParcels: r.AffectedParcels,
		Location:        r.Location,
	}
}
