package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/internal/service/permission"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/validator"
)

// Ratings supplies live rating summaries for services
type Ratings interface {
	Summaries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]model.RatingSummary, error)
}

type Service struct {
	services  repository.ServiceRepository
	ratings   Ratings
	validator validator.Validator
	logger    *logger.Logger
}

func NewService(store repository.Store, ratings Ratings, v validator.Validator, l *logger.Logger) *Service {
	return &Service{
		services:  store.Services(),
		ratings:   ratings,
		validator: v,
		logger:    l.With("catalog"),
	}
}

func (s *Service) CreateService(ctx context.Context, actor model.Principal, req *model.CreateServiceRequest) (*model.Service, error) {
	if err := permission.Authorize(actor, permission.Catalog(), permission.ActionCreate); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	svc := &model.Service{
		ProviderID:      actor.ID,
		Title:           strings.TrimSpace(req.Title),
		Description:     strings.TrimSpace(req.Description),
		Category:        req.Category,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.logger.Info("service created", "service_id", svc.ID.String(), "provider_id", actor.ID.String())
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, actor model.Principal, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForService(svc), permission.ActionUpdate); err != nil {
		return nil, err
	}

	if req.Title != nil {
		svc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := permission.Authorize(actor, permission.ForService(svc), permission.ActionDelete); err != nil {
		return err
	}

	if err := s.services.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	s.logger.Info("service deleted", "service_id", id.String(), "actor_id", actor.ID.String())
	return nil
}

// GetService returns a service joined with its current rating
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.ServiceWithRating, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := s.withRatings(ctx, []*model.Service{svc})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ListServices returns active services, newest first, each joined with its
// live rating. keyword matches title or description case-insensitively.
func (s *Service) ListServices(ctx context.Context, keyword string, providerID *uuid.UUID) ([]*model.ServiceWithRating, error) {
	services, err := s.services.List(ctx, &model.ServiceFilters{
		Keyword:    strings.TrimSpace(keyword),
		ProviderID: providerID,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return s.withRatings(ctx, services)
}

func (s *Service) withRatings(ctx context.Context, services []*model.Service) ([]*model.ServiceWithRating, error) {
	ids := make([]uuid.UUID, len(services))
	for i, svc := range services {
		ids[i] = svc.ID
	}

	summaries, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*model.ServiceWithRating, len(services))
	for i, svc := range services {
		summary := summaries[svc.ID]
		out[i] = &model.ServiceWithRating{
			Service:       *svc,
			AverageRating: summary.Average,
			ReviewCount:   summary.Count,
		}
	}
	return out, nil
}
