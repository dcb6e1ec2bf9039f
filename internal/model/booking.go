package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

// Booking is a scheduled engagement between a customer and a provider
type Booking struct {
	Base
	CustomerID  uuid.UUID     `json:"customerId" db:"customer_id"`
	ProviderID  uuid.UUID     `json:"providerId" db:"provider_id"`
	ServiceID   uuid.UUID     `json:"serviceId" db:"service_id"`
	ScheduledAt time.Time     `json:"scheduledAt" db:"scheduled_at"`
	Address     string        `json:"address" db:"address"`
	Price       float64       `json:"price" db:"price"`
	Status      BookingStatus `json:"status" db:"status"`
}

type CreateBookingRequest struct {
	ProviderID  uuid.UUID `json:"providerId" binding:"required"`
	ServiceID   uuid.UUID `json:"serviceId" binding:"required"`
	ScheduledAt time.Time `json:"scheduledAt" binding:"required"`
	Address     string    `json:"address" binding:"required"`
	Price       float64   `json:"price" binding:"gte=0"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// BookingFilters scopes a booking listing; nil fields are unrestricted
type BookingFilters struct {
	CustomerID *uuid.UUID
	ProviderID *uuid.UUID
	Status     BookingStatus
}
