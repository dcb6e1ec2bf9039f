package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

const userColumns = `id, name, email, password_hash, phone, role, is_verified,
	verification_status, city, service_locations, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	user.Touch(r.now())
	if user.ServiceLocations == nil {
		user.ServiceLocations = []string{}
	}

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Phone,
		user.Role,
		user.IsVerified,
		user.VerificationStatus,
		user.City,
		user.ServiceLocations,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", duplicate("email already registered", err))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var user model.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) SetVerified(ctx context.Context, id uuid.UUID, status model.VerificationStatus) error {
	query := `
		UPDATE users
		SET is_verified = $1, verification_status = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status == model.VerificationVerified, status, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to update user verification: %w", err)
	}
	return expectOne("user", result)
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOne("user", result)
}

func (r *userRepository) where(filters *model.UserFilters) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	if filters != nil {
		if filters.Role != "" {
			args = append(args, filters.Role)
			clauses = append(clauses, fmt.Sprintf("role = $%d", len(args)))
		}
		if filters.IsVerified != nil {
			args = append(args, *filters.IsVerified)
			clauses = append(clauses, fmt.Sprintf("is_verified = $%d", len(args)))
		}
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	where, args := r.where(filters)
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY created_at DESC`

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filters *model.UserFilters) (int, error) {
	where, args := r.where(filters)

	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
