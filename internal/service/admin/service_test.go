package admin

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

var admin = model.Principal{ID: uuid.New(), Role: model.RoleAdmin}

func setup(t *testing.T) (*Service, *memory.Store, *metrics.Metrics) {
	t.Helper()
	store := memory.NewStore()
	m := metrics.NewNop()
	return NewService(store, []string{"Vashi", "Kalyan"}, m, logger.Nop()), store, m
}

func addUser(t *testing.T, store *memory.Store, email string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{Email: email, Role: role, VerificationStatus: model.VerificationPending}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestRejectThenVerifyIsNotFound(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	u := addUser(t, store, "u@example.com", model.RoleProvider)

	require.NoError(t, svc.RejectProvider(ctx, admin, u.ID))

	_, err := store.Users().Get(ctx, u.ID)
	assert.True(t, apperrors.IsNotFound(err))

	err = svc.VerifyProvider(ctx, admin, u.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestRejectProviderKeepsRevenue(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	provider := addUser(t, store, "p@example.com", model.RoleProvider)
	customer := addUser(t, store, "c@example.com", model.RoleCustomer)

	service := &model.Service{ProviderID: provider.ID, Title: "Deep clean", IsActive: true}
	require.NoError(t, store.Services().Create(ctx, service))
	booking := &model.Booking{
		CustomerID: customer.ID,
		ProviderID: provider.ID,
		ServiceID:  service.ID,
		Address:    "Plot 4, Vashi",
		Price:      500,
		Status:     model.BookingStatusCompleted,
	}
	require.NoError(t, store.Bookings().Create(ctx, booking))

	require.NoError(t, svc.RejectProvider(ctx, admin, provider.ID))

	_, err := store.Bookings().Get(ctx, booking.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stats.Revenue)
	assert.Zero(t, stats.Services)
	require.Len(t, stats.Locations, 2)
	assert.Equal(t, "Vashi", stats.Locations[0].Name)
	assert.Equal(t, 1, stats.Locations[0].Completed)
}

func TestVerifyProviderIsIdempotent(t *testing.T) {
	svc, store, m := setup(t)
	ctx := context.Background()
	u := addUser(t, store, "p@example.com", model.RoleProvider)

	require.NoError(t, svc.VerifyProvider(ctx, admin, u.ID))
	require.NoError(t, svc.VerifyProvider(ctx, admin, u.ID))

	got, err := store.Users().Get(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ModerationActions.WithLabelValues("verify_provider")))

	assert.True(t, apperrors.IsInvalidState(svc.RejectProvider(ctx, admin, u.ID)))
}

func TestProviderModerationRules(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	customer := addUser(t, store, "c@example.com", model.RoleCustomer)
	provider := addUser(t, store, "p@example.com", model.RoleProvider)

	assert.True(t, apperrors.IsValidation(svc.VerifyProvider(ctx, admin, customer.ID)))
	assert.True(t, apperrors.IsValidation(svc.RejectProvider(ctx, admin, customer.ID)))

	notAdmin := model.Principal{ID: provider.ID, Role: model.RoleProvider}
	assert.True(t, apperrors.IsAuthorization(svc.VerifyProvider(ctx, notAdmin, provider.ID)))

	list, err := svc.ListUnverifiedProviders(ctx, admin)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, provider.ID, list[0].ID)
}

func TestReviewModeration(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	r := &model.Review{BookingID: uuid.New(), CustomerID: uuid.New(), Rating: 1, IsVisible: true, IsFlagged: true}
	require.NoError(t, store.Reviews().Create(ctx, r))

	flagged, err := svc.ListFlaggedReviews(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, flagged, 1)

	ignored, err := svc.IgnoreReport(ctx, admin, r.ID)
	require.NoError(t, err)
	assert.False(t, ignored.IsFlagged)

	hidden, err := svc.SetReviewVisibility(ctx, admin, r.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.IsVisible)

	require.NoError(t, svc.DeleteReview(ctx, admin, r.ID))
	assert.True(t, apperrors.IsNotFound(svc.DeleteReview(ctx, admin, r.ID)))

	_, err = svc.IgnoreReport(ctx, admin, uuid.New())
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.ListFlaggedReviews(ctx, model.Principal{ID: uuid.New(), Role: model.RoleProvider})
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestStats(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()

	addUser(t, store, "a@example.com", model.RoleProvider)
	verified := addUser(t, store, "b@example.com", model.RoleProvider)
	require.NoError(t, store.Users().SetVerified(ctx, verified.ID, model.VerificationVerified))

	require.NoError(t, store.Services().Create(ctx, &model.Service{ProviderID: verified.ID, IsActive: true}))
	require.NoError(t, store.Services().Create(ctx, &model.Service{ProviderID: verified.ID, IsActive: false}))

	for _, b := range []*model.Booking{
		{Address: "Sector 17, Vashi", Price: 500, Status: model.BookingStatusCompleted},
		{Address: "kalyan east", Price: 300, Status: model.BookingStatusCompleted},
		{Address: "Kalyan west", Price: 200, Status: model.BookingStatusCancelled},
		{Address: "Vashi", Price: 800, Status: model.BookingStatusPending},
	} {
		require.NoError(t, store.Bookings().Create(ctx, b))
	}

	stats, err := svc.Stats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Waitlist)
	assert.Equal(t, 1, stats.Services)
	assert.Equal(t, 800.0, stats.Revenue)
	assert.Equal(t, []model.LocationStat{
		{Name: "Vashi", Completed: 1, Cancelled: 0},
		{Name: "Kalyan", Completed: 1, Cancelled: 1},
	}, stats.Locations)
}
