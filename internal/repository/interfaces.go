package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

// All repository interfaces in one file.
//
// Get methods return an error satisfying errors.IsNotFound when the record is
// absent. Create methods return errors.IsDuplicate on a uniqueness violation.
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		SetVerified(ctx context.Context, id uuid.UUID, status model.VerificationStatus) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		Count(ctx context.Context, filters *model.UserFilters) (int, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error)
		CountActive(ctx context.Context) (int, error)
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		SumPrice(ctx context.Context, status model.BookingStatus) (float64, error)
		CountByAddress(ctx context.Context, status model.BookingStatus, keyword string) (int, error)
	}

	ReviewRepository interface {
		Create(ctx context.Context, review *model.Review) error
		Get(ctx context.Context, id uuid.UUID) (*model.Review, error)
		FindByBookingAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Review, error)
		SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error
		SetVisible(ctx context.Context, id uuid.UUID, visible bool) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error)
		// RatingSummaries aggregates visible reviews per service. Services
		// without visible reviews are absent from the result.
		RatingSummaries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]model.RatingSummary, error)
	}

	ChatRepository interface {
		GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Chat, error)
		Create(ctx context.Context, chat *model.Chat) error
		AppendMessage(ctx context.Context, msg *model.ChatMessage) error
	}

	// Store bundles every repository behind one entity store
	Store interface {
		Users() UserRepository
		Services() ServiceRepository
		Bookings() BookingRepository
		Reviews() ReviewRepository
		Chats() ChatRepository
		Ping(ctx context.Context) error
		Close() error
	}
)
