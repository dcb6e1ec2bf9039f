package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

const reviewColumns = `id, booking_id, service_id, provider_id, customer_id, rating,
	comment, is_visible, is_flagged, created_at, updated_at`

type reviewRepository struct {
	BaseRepository
}

func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	review.Touch(r.now())

	_, err := r.db.ExecContext(ctx, query,
		review.ID,
		review.BookingID,
		review.ServiceID,
		review.ProviderID,
		review.CustomerID,
		review.Rating,
		review.Comment,
		review.IsVisible,
		review.IsFlagged,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", missingReference("booking", duplicate("booking already reviewed", err)))
	}
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		return nil, notFound("review", err)
	}
	return &review, nil
}

func (r *reviewRepository) FindByBookingAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE booking_id = $1 AND customer_id = $2`

	var review model.Review
	if err := r.db.GetContext(ctx, &review, query, bookingID, customerID); err != nil {
		return nil, notFound("review", err)
	}
	return &review, nil
}

func (r *reviewRepository) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_flagged = $1, updated_at = $2 WHERE id = $3`, flagged, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to flag review: %w", err)
	}
	return expectOne("review", result)
}

func (r *reviewRepository) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET is_visible = $1, updated_at = $2 WHERE id = $3`, visible, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update review visibility: %w", err)
	}
	return expectOne("review", result)
}

func (r *reviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectOne("review", result)
}

func (r *reviewRepository) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if filters != nil {
		if filters.ServiceID != nil {
			args = append(args, *filters.ServiceID)
			clauses = append(clauses, fmt.Sprintf("service_id = $%d", len(args)))
		}
		if filters.ProviderID != nil {
			args = append(args, *filters.ProviderID)
			clauses = append(clauses, fmt.Sprintf("provider_id = $%d", len(args)))
		}
		if filters.VisibleOnly {
			clauses = append(clauses, "is_visible")
		}
		if filters.FlaggedOnly {
			clauses = append(clauses, "is_flagged")
		}
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	reviews := []*model.Review{}
	if err := r.db.SelectContext(ctx, &reviews, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

type ratingRow struct {
	ServiceID uuid.UUID `db:"service_id"`
	model.RatingSummary
}

func (r *reviewRepository) RatingSummaries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]model.RatingSummary, error) {
	summaries := make(map[uuid.UUID]model.RatingSummary, len(serviceIDs))
	if len(serviceIDs) == 0 {
		return summaries, nil
	}

	query, args, err := sqlx.In(`
		SELECT service_id, AVG(rating) AS average, COUNT(*) AS count
		FROM reviews
		WHERE is_visible AND service_id IN (?)
		GROUP BY service_id
	`, serviceIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build rating query: %w", err)
	}

	var rows []ratingRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}
	for _, row := range rows {
		summaries[row.ServiceID] = row.RatingSummary
	}
	return summaries, nil
}
