package review

import (
	"context"
	"fmt"
	"math"
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

const (
	MinRating = 1
	MaxRating = 5
)

type Service struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
	events   event.Publisher
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func NewService(store repository.Store, events event.Publisher, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		reviews:  store.Reviews(),
		bookings: store.Bookings(),
		events:   events,
		metrics:  m,
		logger:   l.With("review"),
	}
}

// CreateReview records the calling customer's review of a completed booking.
// A booking can be reviewed once per customer.
func (s *Service) CreateReview(ctx context.Context, actor model.Principal, req *model.CreateReviewRequest) (*model.Review, error) {
	if req.Rating < MinRating || req.Rating > MaxRating {
		return nil, apperrors.Validationf("rating must be between %d and %d", MinRating, MaxRating)
	}

	booking, err := s.bookings.Get(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForBooking(booking), permission.ActionReview); err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusCompleted {
		return nil, apperrors.InvalidState("only completed bookings can be reviewed")
	}
	if (req.ServiceID != uuid.Nil && req.ServiceID != booking.ServiceID) ||
		(req.ProviderID != uuid.Nil && req.ProviderID != booking.ProviderID) {
		return nil, apperrors.Validation("serviceId and providerId must match the booking")
	}

	if _, err := s.reviews.FindByBookingAndCustomer(ctx, booking.ID, actor.ID); err == nil {
		return nil, apperrors.Duplicate("booking already reviewed", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &model.Review{
		BookingID:  booking.ID,
		ServiceID:  booking.ServiceID,
		ProviderID: booking.ProviderID,
		CustomerID: actor.ID,
		Rating:     req.Rating,
		Comment:    strings.TrimSpace(req.Comment),
		IsVisible:  true,
		IsFlagged:  false,
	}
	// the store enforces the same uniqueness for concurrent submissions
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.metrics.ReviewsCreated.Inc()
	s.logger.Info("review created", "review_id", review.ID.String(), "booking_id", booking.ID.String())
	s.events.Emit(ctx, model.EventReviewCreated, actor.ID, review)

	return review, nil
}

// ListReviews returns visible reviews, newest first
func (s *Service) ListReviews(ctx context.Context, serviceID, providerID *uuid.UUID) ([]*model.Review, error) {
	reviews, err := s.reviews.List(ctx, &model.ReviewFilters{
		ServiceID:   serviceID,
		ProviderID:  providerID,
		VisibleOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// RoundRating rounds a mean rating to one decimal place
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// Summaries computes live rating summaries for several services at once.
// Every requested id is present in the result; services without visible
// reviews get {0, 0}.
func (s *Service) Summaries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]model.RatingSummary, error) {
	raw, err := s.reviews.RatingSummaries(ctx, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to compute ratings: %w", err)
	}

	out := make(map[uuid.UUID]model.RatingSummary, len(serviceIDs))
	for _, id := range serviceIDs {
		summary := raw[id]
		if summary.Count == 0 {
			out[id] = model.RatingSummary{}
			continue
		}
		out[id] = model.RatingSummary{Average: RoundRating(summary.Average), Count: summary.Count}
	}
	return out, nil
}

// ComputeRatingSummary returns the mean over the service's visible reviews,
// recomputed on every call.
func (s *Service) ComputeRatingSummary(ctx context.Context, serviceID uuid.UUID) (model.RatingSummary, error) {
	summaries, err := s.Summaries(ctx, []uuid.UUID{serviceID})
	if err != nil {
		return model.RatingSummary{}, err
	}
	return summaries[serviceID], nil
}

// FlagReview marks a review for admin attention. Allowed for the reviewed
// provider and for admins.
func (s *Service) FlagReview(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.Review, error) {
	review, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForReview(review), permission.ActionFlag); err != nil {
		return nil, err
	}

	if err := s.reviews.SetFlagged(ctx, id, true); err != nil {
		return nil, fmt.Errorf("failed to flag review: %w", err)
	}
	review.IsFlagged = true

	s.metrics.ModerationActions.WithLabelValues("flag").Inc()
	s.logger.Info("review flagged", "review_id", id.String(), "actor_id", actor.ID.String())
	return review, nil
}
