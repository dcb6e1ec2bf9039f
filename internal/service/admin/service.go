package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/internal/service/permission"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

// Service implements the moderation workflow over providers and reviews
type Service struct {
	users     repository.UserRepository
	services  repository.ServiceRepository
	bookings  repository.BookingRepository
	reviews   repository.ReviewRepository
	locations []string
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(store repository.Store, locations []string, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		users:     store.Users(),
		services:  store.Services(),
		bookings:  store.Bookings(),
		reviews:   store.Reviews(),
		locations: locations,
		metrics:   m,
		logger:    l.With("admin"),
	}
}

func requireAdmin(actor model.Principal) error {
	return permission.RequireRole(actor, model.RoleAdmin)
}

func (s *Service) record(action string, actor model.Principal, target uuid.UUID) {
	s.metrics.ModerationActions.WithLabelValues(action).Inc()
	s.logger.Info("moderation action", "action", action, "actor_id", actor.ID.String(), "target_id", target.String())
}

func (s *Service) ListUnverifiedProviders(ctx context.Context, actor model.Principal) ([]*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	unverified := false
	users, err := s.users.List(ctx, &model.UserFilters{Role: model.RoleProvider, IsVerified: &unverified})
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	return users, nil
}

func (s *Service) provider(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForUser(user), permission.ActionModerate); err != nil {
		return nil, err
	}
	if user.Role != model.RoleProvider {
		return nil, apperrors.Validation("user is not a provider")
	}
	return user, nil
}

// VerifyProvider marks a provider verified. Verifying twice is not an error.
func (s *Service) VerifyProvider(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if _, err := s.provider(ctx, actor, id); err != nil {
		return err
	}

	if err := s.users.SetVerified(ctx, id, model.VerificationVerified); err != nil {
		return fmt.Errorf("failed to verify provider: %w", err)
	}
	s.record("verify_provider", actor, id)
	return nil
}

// RejectProvider deletes an unverified provider account. Irreversible.
func (s *Service) RejectProvider(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.provider(ctx, actor, id)
	if err != nil {
		return err
	}
	if user.IsVerified {
		return apperrors.InvalidState("provider is already verified")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to reject provider: %w", err)
	}
	s.record("reject_provider", actor, id)
	return nil
}

func (s *Service) ListFlaggedReviews(ctx context.Context, actor model.Principal) ([]*model.Review, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.List(ctx, &model.ReviewFilters{FlaggedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list flagged reviews: %w", err)
	}
	return reviews, nil
}

func (s *Service) review(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.Review, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	review, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForReview(review), permission.ActionModerate); err != nil {
		return nil, err
	}
	return review, nil
}

// IgnoreReport clears the flag on a review and leaves it in place
func (s *Service) IgnoreReport(ctx context.Context, actor model.Principal, id uuid.UUID) (*model.Review, error) {
	review, err := s.review(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.SetFlagged(ctx, id, false); err != nil {
		return nil, fmt.Errorf("failed to ignore report: %w", err)
	}
	review.IsFlagged = false
	s.record("ignore_report", actor, id)
	return review, nil
}

func (s *Service) SetReviewVisibility(ctx context.Context, actor model.Principal, id uuid.UUID, visible bool) (*model.Review, error) {
	review, err := s.review(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.SetVisible(ctx, id, visible); err != nil {
		return nil, fmt.Errorf("failed to update review visibility: %w", err)
	}
	review.IsVisible = visible

	action := "hide_review"
	if visible {
		action = "show_review"
	}
	s.record(action, actor, id)
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if _, err := s.review(ctx, actor, id); err != nil {
		return err
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	s.record("delete_review", actor, id)
	return nil
}

// Stats backs the admin dashboard. Location counts match the configured
// keywords against booking addresses.
func (s *Service) Stats(ctx context.Context, actor model.Principal) (*model.Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	unverified := false
	waitlist, err := s.users.Count(ctx, &model.UserFilters{Role: model.RoleProvider, IsVerified: &unverified})
	if err != nil {
		return nil, fmt.Errorf("failed to count waitlist: %w", err)
	}

	services, err := s.services.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count services: %w", err)
	}

	revenue, err := s.bookings.SumPrice(ctx, model.BookingStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}

	stats := &model.Stats{
		Waitlist:  waitlist,
		Services:  services,
		Revenue:   revenue,
		Locations: make([]model.LocationStat, 0, len(s.locations)),
	}
	for _, name := range s.locations {
		completed, err := s.bookings.CountByAddress(ctx, model.BookingStatusCompleted, name)
		if err != nil {
			return nil, fmt.Errorf("failed to count bookings for %s: %w", name, err)
		}
		cancelled, err := s.bookings.CountByAddress(ctx, model.BookingStatusCancelled, name)
		if err != nil {
			return nil, fmt.Errorf("failed to count bookings for %s: %w", name, err)
		}
		stats.Locations = append(stats.Locations, model.LocationStat{Name: name, Completed: completed, Cancelled: cancelled})
	}
	return stats, nil
}
