package seed

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/logistics-tracker-api/internal/models"
	"github.com/noah-isme/logistics-tracker-api/internal/repository"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func seedDocument(hash string) string {
	return fmt.Sprintf(`
users:
  - username: admin
    passwordHash: %q
    email: admin@logistics.test
    fullName: Ops Admin
    role: admin
  - username: sally
    passwordHash: %q
    email: sally@logistics.test
    fullName: Sally Sender
    role: sender
parcels:
  - trackingNumber: MRP-SEED001
    owner: sally
    origin: Rotterdam
    destination: Berlin
    status: delayed
    transportMode: road
    weight: 12.5
    delayReason: heavy traffic on A2
  - trackingNumber: MRP-SEED002
    owner: sally
    origin: Hamburg
    destination: Vienna
    status: in_transit
    transportMode: rail
    weight: 3
    estimatedDelivery: 2024-05-01T12:00:00Z
routes:
  - trackingNumber: MRP-SEED002
    routePath:
      - {name: Hamburg, lat: 53.55, lng: 9.99}
      - {name: Vienna, lat: 48.21, lng: 16.37}
    duration: 720
    distance: 1240
issues:
  - title: Storm front
    description: Heavy winds across northern Germany
    severity: high
    issueType: weather
    affectedTrackingNumbers: [MRP-SEED002]
`, hash, hash)
}

func TestLoadPopulatesStorage(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	res, err := Load(strings.NewReader(seedDocument(hashFor(t, "secret123"))), store, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 2, Parcels: 2, Routes: 1, Issues: 1}, res)

	sally, ok := store.GetUserByUsername("sally")
	require.True(t, ok)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(sally.Password), []byte("secret123")))
	_, ok = store.GetPreferenceByUserID(sally.ID)
	assert.True(t, ok)

	parcel, ok := store.GetParcelByTrackingNumber("MRP-SEED002")
	require.True(t, ok)
	assert.Equal(t, sally.ID, parcel.UserID)
	require.NotNil(t, parcel.EstimatedDelivery)
	assert.Equal(t, 2024, parcel.EstimatedDelivery.Year())

	route, ok := store.GetRouteByParcelID(parcel.ID)
	require.True(t, ok)
	assert.True(t, route.Active)
	assert.Equal(t, models.TransportRail, route.TransportMode)
	assert.Equal(t, "Vienna", route.RoutePath[1].Name)

	issues := store.ListActiveIssues()
	require.Len(t, issues, 1)
	assert.Equal(t, []int{parcel.ID}, issues[0].AffectedParcels)

	stats := store.GetStats()
	assert.Equal(t, 2, stats.ActiveParcels)
	assert.Equal(t, 1, stats.DelayedParcels)
	assert.Equal(t, 1, stats.ActiveRoutes)
}

func TestLoadSkipsExistingUsers(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	doc := `
users:
  - username: admin
    passwordHash: "` + hashFor(t, "pw123456") + `"
    email: admin@logistics.test
    fullName: Ops Admin
    role: admin
`
	_, err := Load(strings.NewReader(doc), store, nil)
	require.NoError(t, err)
	res, err := Load(strings.NewReader(doc), store, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Users)
	assert.Len(t, store.ListUsers(), 1)
}

func TestLoadRejectsPlaintextPasswords(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	doc := `
users:
  - username: admin
    passwordHash: admin123
    email: admin@logistics.test
    fullName: Ops Admin
`
	_, err := Load(strings.NewReader(doc), store, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a bcrypt hash")
	assert.Empty(t, store.ListUsers())
}

func TestLoadRejectsUnknownReferences(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	doc := `
parcels:
  - owner: nobody
    origin: A
    destination: B
    transportMode: air
    weight: 1
`
	_, err := Load(strings.NewReader(doc), store, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown owner")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	_, err := Load(strings.NewReader("users:\n  - usernme: typo\n"), store, nil)
	assert.Error(t, err)
}

func TestLoadEmptyDocument(t *testing.T) {
	store := repository.NewStorage(zap.NewNop(), nil)
	res, err := Load(strings.NewReader(""), store, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
}
