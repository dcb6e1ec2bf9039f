package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

const bookingColumns = `id, customer_id, provider_id, service_id, scheduled_at,
	address, price, status, created_at, updated_at`

type bookingRepository struct {
	BaseRepository
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	booking.Touch(r.now())

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.ProviderID,
		booking.ServiceID,
		booking.ScheduledAt,
		booking.Address,
		booking.Price,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, notFound("booking", err)
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	query := `UPDATE bookings SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, status, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	return expectOne("booking", result)
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if filters != nil {
		if filters.CustomerID != nil {
			args = append(args, *filters.CustomerID)
			clauses = append(clauses, fmt.Sprintf("customer_id = $%d", len(args)))
		}
		if filters.ProviderID != nil {
			args = append(args, *filters.ProviderID)
			clauses = append(clauses, fmt.Sprintf("provider_id = $%d", len(args)))
		}
		if filters.Status != "" {
			args = append(args, filters.Status)
			clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
		}
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	bookings := []*model.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) SumPrice(ctx context.Context, status model.BookingStatus) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(price), 0) FROM bookings WHERE status = $1`
	if err := r.db.GetContext(ctx, &total, query, status); err != nil {
		return 0, fmt.Errorf("failed to sum booking prices: %w", err)
	}
	return total, nil
}

func (r *bookingRepository) CountByAddress(ctx context.Context, status model.BookingStatus, keyword string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM bookings WHERE status = $1 AND address ILIKE '%' || $2 || '%'`
	if err := r.db.GetContext(ctx, &count, query, status, keyword); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
