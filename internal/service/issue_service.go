package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

type issueStore interface {
	GetIssue(id int) (models.Issue, bool)
	ListIssues() []models.Issue
	ListActiveIssues() []models.Issue
	CreateIssue(input models.IssueInput) models.Issue
	UpdateIssue(id int, patch models.IssuePatch) (models.Issue, bool)
}

// IssueService manages operational incidents.
type IssueService struct {
	store     issueStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIssueService constructs an IssueService.
func NewIssueService(store issueStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &IssueService{store: store, cache: cache, validator: validate, logger: logger}
}

// List returns every issue.
func (s *IssueService) List(ctx context.Context) []models.Issue {
	return s.store.ListIssues()
}

// ListActive returns the unresolved issues.
func (s *IssueService) ListActive(ctx context.Context) []models.Issue {
	return s.store.ListActiveIssues()
}

// Get returns a single issue.
func (s *IssueService) Get(ctx context.Context, id int) (*models.Issue, error) {
	issue, ok := s.store.GetIssue(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
	}
	return &issue, nil
}

// Create reports a new issue.
func (s *IssueService) Create(ctx context.Context, req dto.CreateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	issue := s.store.CreateIssue(req.ToInput())
	s.logger.Info("issue reported", zap.Int("issue_id", issue.ID), zap.String("severity", string(issue.Severity)))
	s.cache.Invalidate(ctx, cacheKeyAnalyticsSummary)
	return &issue, nil
}

// Update patches an issue. Resolving stamps resolvedAt.
func (s *IssueService) Update(ctx context.Context, id int, req dto.UpdateIssueRequest) (*models.Issue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid issue payload")
	}
	issue, ok := s.store.UpdateIssue(id, req.ToPatch())
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "issue not found")
	}
	s.cache.Invalidate(ctx, cacheKeyAnalyticsSummary)
	return &issue, nil
}
