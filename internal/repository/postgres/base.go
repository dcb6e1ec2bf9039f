package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/marketplace-api/internal/repository"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// notFound converts sql.ErrNoRows into a NotFound AppError
func notFound(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound(resource, err)
	}
	return fmt.Errorf("failed to get %s: %w", resource, err)
}

// duplicate converts unique violations into a Duplicate AppError
func duplicate(message string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.Duplicate(message, err)
	}
	return err
}

// missingReference converts foreign key violations into a NotFound AppError
// naming the referenced resource
func missingReference(resource string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return apperrors.NotFound(resource, err)
	}
	return err
}

// expectOne turns a zero-row mutation into NotFound
func expectOne(resource string, result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}

// Store is the Postgres-backed entity store
type Store struct {
	BaseRepository
	users    *userRepository
	services *serviceRepository
	bookings *bookingRepository
	reviews  *reviewRepository
	chats    *chatRepository
}

func NewStore(db *sqlx.DB) *Store {
	base := NewBaseRepository(db)
	return &Store{
		BaseRepository: base,
		users:          &userRepository{base},
		services:       &serviceRepository{base},
		bookings:       &bookingRepository{base},
		reviews:        &reviewRepository{base},
		chats:          &chatRepository{base},
	}
}

func (s *Store) Users() repository.UserRepository       { return s.users }
func (s *Store) Services() repository.ServiceRepository { return s.services }
func (s *Store) Bookings() repository.BookingRepository { return s.bookings }
func (s *Store) Reviews() repository.ReviewRepository   { return s.reviews }
func (s *Store) Chats() repository.ChatRepository       { return s.chats }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
