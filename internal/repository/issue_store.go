package repository

import "github.com/noah-isme/logistics-tracker-api/internal/models"

func cloneIssue(i models.Issue) models.Issue { return i.Clone() }

// GetIssue returns the issue with the given id.
func (s *Storage) GetIssue(id int) (models.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.issues.get(id)
	if !ok {
		return models.Issue{}, false
	}
	return i.Clone(), true
}

// ListIssues returns a snapshot of every issue ordered by id.
func (s *Storage) ListIssues() []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issues.filter(nil, cloneIssue)
}

// ListActiveIssues returns a snapshot of the unresolved issues.
func (s *Storage) ListActiveIssues() []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.issues.filter(func(i models.Issue) bool { return i.Status == models.IssueActive }, cloneIssue)
}

// CreateIssue stores a new issue with resolvedAt unset.
func (s *Storage) CreateIssue(input models.IssueInput) models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := input.Status
	if status == "" {
		status = models.IssueActive
	}
	issue := models.Issue{
		ID:              s.issues.nextID(),
		Title:           input.Title,
		Description:     input.Description,
		Severity:        input.Severity,
		Status:          status,
		IssueType:       input.IssueType,
		AffectedParcels: input.AffectedParcels,
		Location:        input.Location,
		CreatedAt:       s.now(),
		ResolvedAt:      nil,
	}
	issue = issue.Clone()
	s.issues.put(issue.ID, issue)
	return issue.Clone()
}

// UpdateIssue merges the patch into the issue. Leaving the active state stamps
// resolvedAt; returning to active keeps the earlier resolvedAt.
func (s *Storage) UpdateIssue(id int, patch models.IssuePatch) (models.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issue, ok := s.issues.get(id)
	if !ok {
		return models.Issue{}, false
	}
	previous := issue.Status

	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Severity != nil {
		issue.Severity = *patch.Severity
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	if patch.IssueType != nil {
		issue.IssueType = *patch.IssueType
	}
	if patch.AffectedParcels != nil {
		issue.AffectedParcels = patch.AffectedParcels
	}
	if patch.Location != nil {
		issue.Location = patch.Location
	}
	if previous == models.IssueActive && issue.Status != models.IssueActive {
		resolvedAt := s.now()
		issue.ResolvedAt = &resolvedAt
	}
	issue = issue.Clone()
	s.issues.put(id, issue)
	return issue.Clone(), true
}
