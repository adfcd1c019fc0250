package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/logistics-tracker-api/internal/dto"
	"github.com/noah-isme/logistics-tracker-api/internal/models"
	appErrors "github.com/noah-isme/logistics-tracker-api/pkg/errors"
)

func TestUserServiceList(t *testing.T) {
	store := newTestStore()
	seedUser(t, store, "alice", models.RoleSender)
	seedUser(t, store, "bruno", models.RoleStaff)
	seedUser(t, store, "carla", models.RoleSender)
	svc := NewUserService(store, nil, nil, nil)
	ctx := context.Background()

	users, page, err := svc.List(ctx, dto.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, 3, page.TotalCount)

	senders, _, err := svc.List(ctx, dto.UserFilter{Role: models.RoleSender})
	require.NoError(t, err)
	assert.Len(t, senders, 2)

	found, _, err := svc.List(ctx, dto.UserFilter{Search: "BRU"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "bruno", found[0].Username)

	paged, page, err := svc.List(ctx, dto.UserFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
	assert.Equal(t, 3, page.TotalCount)

	_, _, err = svc.List(ctx, dto.UserFilter{Role: "root"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUserServiceListHugePageIsEmpty(t *testing.T) {
	store := newTestStore()
	seedUser(t, store, "alice", models.RoleSender)
	svc := NewUserService(store, nil, nil, nil)

	var (
		users []models.User
		page  *models.Pagination
		err   error
	)
	assert.NotPanics(t, func() {
		users, page, err = svc.List(context.Background(), dto.UserFilter{Page: math.MaxInt/20 + 2})
	})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, 1, page.TotalCount)
}

func TestUserServiceUpdateRole(t *testing.T) {
	store := newTestStore()
	admin := seedUser(t, store, "ada", models.RoleAdmin)
	user := seedUser(t, store, "ben", models.RoleSender)
	audit := &mockAuditRecorder{}
	svc := NewUserService(store, audit, nil, nil)
	ctx := context.Background()

	updated, err := svc.UpdateRole(ctx, claimsFor(admin), user.ID, dto.UpdateUserRoleRequest{Role: models.RoleStaff}, models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, updated.Role)
	assert.Equal(t, []string{models.AuditActionRoleChange}, audit.actions())

	_, err = svc.UpdateRole(ctx, claimsFor(admin), admin.ID, dto.UpdateUserRoleRequest{Role: models.RoleSender}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.UpdateRole(ctx, claimsFor(admin), 404, dto.UpdateUserRoleRequest{Role: models.RoleSender}, models.RequestMeta{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, got.Role)
}

type stubAuditLister struct {
	logs []models.AuditLog
	err  error
	args [2]int
}

func (s *stubAuditLister) List(_ context.Context, limit, offset int) ([]models.AuditLog, error) {
	s.args = [2]int{limit, offset}
	return s.logs, s.err
}

func TestAuditServiceList(t *testing.T) {
	repo := &stubAuditLister{logs: []models.AuditLog{{ID: "a1", Action: models.AuditActionLogin}}}
	svc := NewAuditService(repo, nil)

	logs, err := svc.List(context.Background(), dto.AuditLogFilter{Limit: 10, Offset: 20})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, [2]int{10, 20}, repo.args)

	repo.err = errors.New("db down")
	_, err = svc.List(context.Background(), dto.AuditLogFilter{})
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	_, err = NewAuditService(nil, nil).List(context.Background(), dto.AuditLogFilter{})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
