package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/internal/service/event"
	"github.com/jwalitptl/marketplace-api/internal/service/permission"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

type Service struct {
	bookings repository.BookingRepository
	services repository.ServiceRepository
	events   event.Publisher
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(store repository.Store, events event.Publisher, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		bookings: store.Bookings(),
		services: store.Services(),
		events:   events,
		metrics:  m,
		logger:   l.With("booking"),
	}
}

func (s *Service) validateCreate(req *model.CreateBookingRequest) error {
	if req.ProviderID == uuid.Nil || req.ServiceID == uuid.Nil {
		return apperrors.Validation("providerId and serviceId are required")
	}
	if req.ScheduledAt.IsZero() {
		return apperrors.Validation("scheduledAt is required")
	}
	if strings.TrimSpace(req.Address) == "" {
		return apperrors.Validation("address is required")
	}
	if req.Price < 0 {
		return apperrors.Validation("price must not be negative")
	}
	return nil
}

// CreateBooking books a service for the calling customer. The price is
// captured from the request and never re-read from the service.
func (s *Service) CreateBooking(ctx context.Context, actor model.Principal, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := permission.RequireRole(actor, model.RoleCustomer); err != nil {
		return nil, err
	}
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc.ProviderID != req.ProviderID {
		return nil, apperrors.Validation("service is not offered by this provider")
	}
	if !svc.IsActive {
		return nil, apperrors.InvalidState("service is not active")
	}

	booking := &model.Booking{
		CustomerID:  actor.ID,
		ProviderID:  req.ProviderID,
		ServiceID:   req.ServiceID,
		ScheduledAt: req.ScheduledAt.UTC(),
		Address:     strings.TrimSpace(req.Address),
		Price:       req.Price,
		Status:      model.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.metrics.BookingsCreated.Inc()
	s.logger.Info("booking created", "booking_id", booking.ID.String(), "customer_id", actor.ID.String())
	s.events.Emit(ctx, model.EventBookingCreated, actor.ID, booking)

	return booking, nil
}

// UpdateStatus moves a booking along its lifecycle. Unknown statuses are a
// validation error; customers may only cancel or complete; every transition
// must follow the adjacency table.
func (s *Service) UpdateStatus(ctx context.Context, actor model.Principal, id uuid.UUID, status model.BookingStatus) (*model.Booking, error) {
	if !status.Valid() {
		return nil, apperrors.Validationf("invalid status %q", status)
	}

	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForBooking(booking), permission.ActionUpdateStatus); err != nil {
		return nil, err
	}
	if !RoleMaySet(actor.Role, status) {
		return nil, apperrors.Forbidden(fmt.Sprintf("%s may not set status %s", actor.Role, status))
	}

	from := booking.Status
	if !CanTransition(from, status) {
		return nil, apperrors.InvalidState(fmt.Sprintf("cannot change booking from %s to %s", from, status))
	}

	if err := s.bookings.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	booking.Status = status

	s.metrics.BookingTransitions.WithLabelValues(string(from), string(status)).Inc()
	s.logger.Info("booking status updated",
		"booking_id", id.String(),
		"from", string(from),
		"to", string(status),
		"actor_id", actor.ID.String(),
	)
	s.events.Emit(ctx, model.EventBookingStatusChanged, actor.ID, model.BookingStatusChanged{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		From:       from,
		To:         status,
	})

	return booking, nil
}

// ListBookings returns the bookings visible to actor: their own as customer
// or provider, everything for admins.
func (s *Service) ListBookings(ctx context.Context, actor model.Principal) ([]*model.Booking, error) {
	filters := &model.BookingFilters{}
	switch actor.Role {
	case model.RoleCustomer:
		filters.CustomerID = &actor.ID
	case model.RoleProvider:
		filters.ProviderID = &actor.ID
	case model.RoleAdmin:
	default:
		return nil, apperrors.Forbidden("insufficient role")
	}

	bookings, err := s.bookings.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) GetBooking(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForBooking(booking), permission.ActionRead); err != nil {
		return nil, err
	}
	return booking, nil
}
