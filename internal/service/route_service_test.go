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

func routeRequest(parcelID int) dto.CreateRouteRequest {
	return dto.CreateRouteRequest{
		ParcelID: parcelID,
		RoutePath: []dto.WaypointRequest{
			{Name: "Rotterdam", Lat: 51.92, Lng: 4.48},
			{Name: "Berlin", Lat: 52.52, Lng: 13.40},
		},
		TransportMode: models.TransportRoad,
		Duration:      540,
		Distance:      620,
	}
}

func TestRouteServiceCreateAndUpdate(t *testing.T) {
	store := newTestStore()
	owner := seedUser(t, store, "rosa", models.RoleSender)
	parcel := seedParcel(t, store, owner.ID, models.ParcelStatusInTransit)
	svc := NewRouteService(store, nil, nil, nil)
	ctx := context.Background()

	route, err := svc.Create(ctx, routeRequest(parcel.ID))
	require.NoError(t, err)
	assert.True(t, route.Active)
	assert.Len(t, route.RoutePath, 2)
	assert.Equal(t, 1, store.GetStats().ActiveRoutes)
	assert.Len(t, svc.ListActive(ctx), 1)

	off := false
	updated, err := svc.Update(ctx, route.ID, dto.UpdateRouteRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)
	assert.Equal(t, 0, store.GetStats().ActiveRoutes)
	assert.Empty(t, svc.ListActive(ctx))
	assert.Len(t, svc.List(ctx), 1)

	_, err = svc.Update(ctx, 999, dto.UpdateRouteRequest{Active: &off})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRouteServiceCreateValidation(t *testing.T) {
	store := newTestStore()
	svc := NewRouteService(store, nil, nil, nil)

	req := routeRequest(1)
	req.RoutePath = req.RoutePath[:1]
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	req = routeRequest(1)
	req.RoutePath[0].Lat = 120
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), routeRequest(42))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRouteServiceGetByParcelVisibility(t *testing.T) {
	store := newTestStore()
	owner := seedUser(t, store, "rosa", models.RoleSender)
	other := seedUser(t, store, "otto", models.RoleSender)
	parcel := seedParcel(t, store, owner.ID, models.ParcelStatusInTransit)
	svc := NewRouteService(store, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.GetByParcel(ctx, claimsFor(owner), parcel.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	created, err := svc.Create(ctx, routeRequest(parcel.ID))
	require.NoError(t, err)

	got, err := svc.GetByParcel(ctx, claimsFor(owner), parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetByParcel(ctx, claimsFor(other), parcel.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestRouteServiceOptionsAreDeterministic(t *testing.T) {
	store := newTestStore()
	owner := seedUser(t, store, "rosa", models.RoleSender)
	parcel := seedParcel(t, store, owner.ID, models.ParcelStatusInTransit)
	svc := NewRouteService(store, nil, nil, nil)
	ctx := context.Background()

	options, err := svc.Options(ctx, claimsFor(owner), parcel.ID)
	require.NoError(t, err)
	require.Len(t, options, 4)
	assert.Equal(t, models.TransportRoad, options[0].TransportMode)
	assert.Equal(t, defaultOptionDistance, options[0].Distance)
	assert.Equal(t, "Rotterdam", options[0].RoutePath[0].Name)

	recommended := 0
	for _, o := range options {
		if o.Recommended {
			recommended++
			assert.Equal(t, models.TransportRail, o.TransportMode)
		}
		assert.Greater(t, o.Duration, 0)
		assert.Greater(t, o.EstimatedCost, 0.0)
	}
	assert.Equal(t, 1, recommended)

	_, err = svc.Create(ctx, routeRequest(parcel.ID))
	require.NoError(t, err)
	again, err := svc.Options(ctx, claimsFor(owner), parcel.ID)
	require.NoError(t, err)
	assert.Equal(t, 620.0, again[0].Distance)
	assert.Equal(t, 682.0, again[1].Distance)
	assert.Equal(t, again, mustOptions(t, svc, claimsFor(owner), parcel.ID))
}

func mustOptions(t *testing.T, svc *RouteService, claims models.SessionClaims, parcelID int) []dto.RouteOption {
	t.Helper()
	options, err := svc.Options(context.Background(), claims, parcelID)
	require.NoError(t, err)
	return options
}
