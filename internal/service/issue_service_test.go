package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

func TestIssueServiceLifecycle(t *testing.T) {
	store := newTestStore()
	cache, mr := newTestCache(t, nil)
	svc := NewIssueService(store, cache, nil, nil)
	ctx := context.Background()

	cache.Set(ctx, cacheKeyAnalyticsSummary, map[string]int{"x": 1}, 0)
	issue, err := svc.Create(ctx, dto.CreateIssueRequest{
		Title:           "Port strike",
		Description:     "Dock workers on strike",
		Severity:        models.SeverityHigh,
		IssueType:       models.IssueSystem,
		AffectedParcels: []int{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IssueActive, issue.Status)
	assert.Nil(t, issue.ResolvedAt)
	assert.False(t, mr.Exists(cacheKeyAnalyticsSummary))
	assert.Len(t, svc.ListActive(ctx), 1)

	resolved := models.IssueResolved
	updated, err := svc.Update(ctx, issue.ID, dto.UpdateIssueRequest{Status: &resolved})
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.Empty(t, svc.ListActive(ctx))
	assert.Len(t, svc.List(ctx), 1)

	got, err := svc.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "Port strike", got.Title)
}

func TestIssueServiceErrors(t *testing.T) {
	svc := NewIssueService(newTestStore(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateIssueRequest{Title: "x", Description: "y", Severity: "critical", IssueType: models.IssueSystem})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	title := "renamed"
	_, err = svc.Update(ctx, 7, dto.UpdateIssueRequest{Title: &title})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Get(ctx, 7)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
