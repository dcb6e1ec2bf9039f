package model

import (
	"time"

	"github.com/google/uuid"
)

// Chat is the message thread attached to a booking
type Chat struct {
	Base
	BookingID  uuid.UUID     `json:"bookingId" db:"booking_id"`
	CustomerID uuid.UUID     `json:"customerId" db:"customer_id"`
	ProviderID uuid.UUID     `json:"providerId" db:"provider_id"`
	Messages   []ChatMessage `json:"messages" db:"-"`
}

type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    uuid.UUID `json:"-" db:"chat_id"`
	SenderID  uuid.UUID `json:"senderId" db:"sender_id"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"sent_at"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}
