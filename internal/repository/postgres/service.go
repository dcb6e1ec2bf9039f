package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

const serviceColumns = `id, provider_id, title, description, category, price,
	duration_minutes, is_active, created_at, updated_at`

type serviceRepository struct {
	BaseRepository
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	service.Touch(r.now())

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.ProviderID,
		service.Title,
		service.Description,
		service.Category,
		service.Price,
		service.DurationMinutes,
		service.IsActive,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", missingReference("provider", err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, notFound("service", err)
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET title = $1, description = $2, category = $3, price = $4,
			duration_minutes = $5, is_active = $6, updated_at = $7
		WHERE id = $8
	`
	service.UpdatedAt = r.now()

	result, err := r.db.ExecContext(ctx, query,
		service.Title,
		service.Description,
		service.Category,
		service.Price,
		service.DurationMinutes,
		service.IsActive,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return expectOne("service", result)
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return expectOne("service", result)
}

func (r *serviceRepository) List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error) {
	var (
		clauses []string
		args    []interface{}
	)
	if filters != nil {
		if filters.Keyword != "" {
			args = append(args, "%"+filters.Keyword+"%")
			clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
		}
		if filters.ProviderID != nil {
			args = append(args, *filters.ProviderID)
			clauses = append(clauses, fmt.Sprintf("provider_id = $%d", len(args)))
		}
		if filters.ActiveOnly {
			clauses = append(clauses, "is_active")
		}
	}

	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	services := []*model.Service{}
	if err := r.db.SelectContext(ctx, &services, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM services WHERE is_active`); err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}
	return count, nil
}
