package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository/memory"
	"github.com/jwalitptl/marketplace-api/internal/service/event"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

type fixture struct {
	svc      *Service
	store    *memory.Store
	metrics  *metrics.Metrics
	customer model.Principal
	provider model.Principal
	admin    model.Principal
	service  *model.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	m := metrics.NewNop()

	f := &fixture{
		svc:      NewService(store, event.Nop{}, m, logger.Nop()),
		store:    store,
		metrics:  m,
		customer: model.Principal{ID: uuid.New(), Role: model.RoleCustomer},
		provider: model.Principal{ID: uuid.New(), Role: model.RoleProvider},
		admin:    model.Principal{ID: uuid.New(), Role: model.RoleAdmin},
	}
	f.service = &model.Service{ProviderID: f.provider.ID, Title: "Pipe repair", Price: 450, DurationMinutes: 60, IsActive: true}
	require.NoError(t, store.Services().Create(context.Background(), f.service))
	return f
}

func (f *fixture) request() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		ProviderID:  f.provider.ID,
		ServiceID:   f.service.ID,
		ScheduledAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Address:     "Plot 4, Sector 9, Vashi",
		Price:       500,
	}
}

func (f *fixture) book(t *testing.T) *model.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), f.customer, f.request())
	require.NoError(t, err)
	return b
}

func TestCreateBookingStartsPending(t *testing.T) {
	f := newFixture(t)

	b := f.book(t)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, f.customer.ID, b.CustomerID)
	assert.Equal(t, 500.0, b.Price)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingsCreated))

	// price is captured, not re-read from the service
	f.service.Price = 999
	require.NoError(t, f.store.Services().Update(context.Background(), f.service))
	got, err := f.svc.GetBooking(context.Background(), f.customer, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.Price)
}

func TestCreateBookingRequiresCustomer(t *testing.T) {
	f := newFixture(t)

	for _, actor := range []model.Principal{f.provider, f.admin} {
		_, err := f.svc.CreateBooking(context.Background(), actor, f.request())
		assert.True(t, apperrors.IsAuthorization(err))
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request()
	req.Address = "  "
	_, err := f.svc.CreateBooking(ctx, f.customer, req)
	assert.True(t, apperrors.IsValidation(err))

	req = f.request()
	req.Price = -1
	_, err = f.svc.CreateBooking(ctx, f.customer, req)
	assert.True(t, apperrors.IsValidation(err))

	req = f.request()
	req.ProviderID = uuid.New()
	_, err = f.svc.CreateBooking(ctx, f.customer, req)
	assert.True(t, apperrors.IsValidation(err))

	req = f.request()
	req.ServiceID = uuid.New()
	_, err = f.svc.CreateBooking(ctx, f.customer, req)
	assert.True(t, apperrors.IsNotFound(err))

	f.service.IsActive = false
	require.NoError(t, f.store.Services().Update(ctx, f.service))
	_, err = f.svc.CreateBooking(ctx, f.customer, f.request())
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	b, err := f.svc.UpdateStatus(ctx, f.provider, b.ID, model.BookingStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusAccepted, b.Status)

	b, err = f.svc.UpdateStatus(ctx, f.customer, b.ID, model.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, b.Status)

	stored, err := f.store.Bookings().Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, stored.Status)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingTransitions.WithLabelValues("pending", "accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.BookingTransitions.WithLabelValues("accepted", "completed")))
}

func TestCustomerCannotAccept(t *testing.T) {
	f := newFixture(t)
	b := f.book(t)

	_, err := f.svc.UpdateStatus(context.Background(), f.customer, b.ID, model.BookingStatusAccepted)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestUpdateStatusErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	_, err := f.svc.UpdateStatus(ctx, f.provider, b.ID, "archived")
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.UpdateStatus(ctx, f.provider, uuid.New(), model.BookingStatusAccepted)
	assert.True(t, apperrors.IsNotFound(err))

	stranger := model.Principal{ID: uuid.New(), Role: model.RoleProvider}
	_, err = f.svc.UpdateStatus(ctx, stranger, b.ID, model.BookingStatusAccepted)
	assert.True(t, apperrors.IsAuthorization(err))

	// pending cannot jump straight to completed
	_, err = f.svc.UpdateStatus(ctx, f.provider, b.ID, model.BookingStatusCompleted)
	assert.True(t, apperrors.IsInvalidState(err))

	_, err = f.svc.UpdateStatus(ctx, f.provider, b.ID, model.BookingStatusPending)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestTerminalStatesAreFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t)

	_, err := f.svc.UpdateStatus(ctx, f.admin, b.ID, model.BookingStatusCancelled)
	require.NoError(t, err)

	for _, next := range []model.BookingStatus{
		model.BookingStatusPending,
		model.BookingStatusAccepted,
		model.BookingStatusCompleted,
		model.BookingStatusCancelled,
	} {
		_, err := f.svc.UpdateStatus(ctx, f.admin, b.ID, next)
		assert.True(t, apperrors.IsInvalidState(err), "cancelled -> %s", next)
	}
}

func TestListBookingsScopedToCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t)

	other := model.Principal{ID: uuid.New(), Role: model.RoleCustomer}
	_, err := f.svc.CreateBooking(ctx, other, f.request())
	require.NoError(t, err)

	mine, err := f.svc.ListBookings(ctx, f.customer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	forProvider, err := f.svc.ListBookings(ctx, f.provider)
	require.NoError(t, err)
	assert.Len(t, forProvider, 2)

	all, err := f.svc.ListBookings(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.svc.GetBooking(ctx, other, mine[0].ID)
	assert.True(t, apperrors.IsAuthorization(err))
}

func TestTransitionTable(t *testing.T) {
	assert.True(t, CanTransition(model.BookingStatusPending, model.BookingStatusAccepted))
	assert.True(t, CanTransition(model.BookingStatusPending, model.BookingStatusCancelled))
	assert.True(t, CanTransition(model.BookingStatusAccepted, model.BookingStatusCompleted))
	assert.True(t, CanTransition(model.BookingStatusAccepted, model.BookingStatusCancelled))
	assert.False(t, CanTransition(model.BookingStatusCancelled, model.BookingStatusAccepted))
	assert.False(t, CanTransition(model.BookingStatusAccepted, model.BookingStatusPending))

	assert.True(t, IsTerminal(model.BookingStatusCompleted))
	assert.False(t, IsTerminal(model.BookingStatusPending))

	assert.False(t, RoleMaySet(model.RoleCustomer, model.BookingStatusAccepted))
	assert.True(t, RoleMaySet(model.RoleCustomer, model.BookingStatusCancelled))
	assert.True(t, RoleMaySet(model.RoleProvider, model.BookingStatusAccepted))
}
