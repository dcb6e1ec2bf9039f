package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/pkg/auth"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/security"
	"github.com/jwalitptl/marketplace-api/pkg/validator"
)

var errInvalidCredentials = apperrors.Unauthenticated("invalid credentials")

type Service struct {
	users     repository.UserRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	validator validator.Validator
	logger    *logger.Logger
}

func NewService(store repository.Store, jwtSvc auth.JWTService, hasher security.PasswordHasher,
	v validator.Validator, l *logger.Logger) *Service {
	return &Service{
		users:     store.Users(),
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		validator: v,
		logger:    l.With("auth"),
	}
}

// Register creates a customer or provider account. Providers start
// unverified and wait for an admin.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleCustomer
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, apperrors.Duplicate("email already registered", nil)
	} else if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
			return nil, apperrors.Validation(err.Error())
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:       hash,
		Phone:              req.Phone,
		Role:               role,
		IsVerified:         role != model.RoleProvider,
		VerificationStatus: model.VerificationVerified,
		ServiceLocations:   req.ServiceLocations,
	}
	if role == model.RoleProvider {
		user.VerificationStatus = model.VerificationPending
	}
	if city := strings.TrimSpace(req.City); city != "" {
		user.City = &city
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID.String(), "role", string(role))

	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, errInvalidCredentials
	}
	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.logger.Warn("password hash uses an outdated cost", "user_id", user.ID.String())
	}

	return s.issue(user)
}

// Me returns the account behind the principal
func (s *Service) Me(ctx context.Context, actor model.Principal) (*model.User, error) {
	if actor.ID == uuid.Nil {
		return nil, apperrors.Unauthenticated("authentication required")
	}
	return s.users.Get(ctx, actor.ID)
}

func (s *Service) issue(user *model.User) (*model.AuthResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}
