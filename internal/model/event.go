package model

import (
	"time"

	"github.com/google/uuid"
)

// Domain event channels
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventReviewCreated        = "review.created"
	EventChatMessageSent      = "chat.message_sent"
)

// Event is the envelope published for every domain event
type Event struct {
	ID         uuid.UUID   `json:"id"`
	Type       string      `json:"type"`
	ActorID    uuid.UUID   `json:"actorId"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

type BookingStatusChanged struct {
	BookingID  uuid.UUID     `json:"bookingId"`
	CustomerID uuid.UUID     `json:"customerId"`
	ProviderID uuid.UUID     `json:"providerId"`
	From       BookingStatus `json:"from"`
	To         BookingStatus `json:"to"`
}
