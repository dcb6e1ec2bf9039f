package model

import (
	"github.com/google/uuid"
)

type Category string

const (
	CategoryPlumbing    Category = "Plumbing"
	CategoryCleaning    Category = "Cleaning"
	CategoryTutoring    Category = "Tutoring"
	CategoryElectrician Category = "Electrician"
	CategoryPainter     Category = "Painter"
	CategoryGardener    Category = "Gardener"
	CategoryOther       Category = "Other"
)

// Service is an offering published by a provider
type Service struct {
	Base
	ProviderID      uuid.UUID `json:"providerId" db:"provider_id"`
	Title           string    `json:"title" db:"title"`
	Description     string    `json:"description" db:"description"`
	Category        Category  `json:"category" db:"category"`
	Price           float64   `json:"price" db:"price"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	IsActive        bool      `json:"isActive" db:"is_active"`
}

// ServiceWithRating is a service joined with its live rating summary
type ServiceWithRating struct {
	Service
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}

type CreateServiceRequest struct {
	Title           string   `json:"title" validate:"required,max=200"`
	Description     string   `json:"description" validate:"required,max=5000"`
	Category        Category `json:"category" validate:"required,oneof=Plumbing Cleaning Tutoring Electrician Painter Gardener Other"`
	Price           float64  `json:"price" validate:"gte=0"`
	DurationMinutes int      `json:"durationMinutes" validate:"required,gt=0"`
}

type UpdateServiceRequest struct {
	Title           *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string   `json:"description" validate:"omitempty,min=1,max=5000"`
	Category        *Category `json:"category" validate:"omitempty,oneof=Plumbing Cleaning Tutoring Electrician Painter Gardener Other"`
	Price           *float64  `json:"price" validate:"omitempty,gte=0"`
	DurationMinutes *int      `json:"durationMinutes" validate:"omitempty,gt=0"`
	IsActive        *bool     `json:"isActive"`
}

type ServiceFilters struct {
	Keyword    string
	ProviderID *uuid.UUID
	ActiveOnly bool
}
