package model

import (
	"github.com/google/uuid"
)

// Review is a customer's rating of a completed booking
type Review struct {
	Base
	BookingID  uuid.UUID `json:"bookingId" db:"booking_id"`
	ServiceID  uuid.UUID `json:"serviceId" db:"service_id"`
	ProviderID uuid.UUID `json:"providerId" db:"provider_id"`
	CustomerID uuid.UUID `json:"customerId" db:"customer_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	IsVisible  bool      `json:"isVisible" db:"is_visible"`
	IsFlagged  bool      `json:"isFlagged" db:"is_flagged"`
}

type CreateReviewRequest struct {
	BookingID  uuid.UUID `json:"bookingId" binding:"required"`
	ServiceID  uuid.UUID `json:"serviceId" binding:"required"`
	ProviderID uuid.UUID `json:"providerId" binding:"required"`
	Rating     int       `json:"rating" binding:"required,min=1,max=5"`
	Comment    string    `json:"comment" binding:"max=2000"`
}

// ReviewFilters selects reviews; listings for the public always set VisibleOnly
type ReviewFilters struct {
	ServiceID   *uuid.UUID
	ProviderID  *uuid.UUID
	VisibleOnly bool
	FlaggedOnly bool
}

// RatingSummary is the mean rating over visible reviews, rounded to one decimal
type RatingSummary struct {
	Average float64 `json:"averageRating" db:"average"`
	Count   int     `json:"reviewCount" db:"count"`
}
