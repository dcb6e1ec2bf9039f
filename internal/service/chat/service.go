package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/internal/service/event"
	"github.com/jwalitptl/marketplace-api/internal/service/permission"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
)

const MaxMessageLen = 4000

type Service struct {
	chats    repository.ChatRepository
	bookings repository.BookingRepository
	events   event.Publisher
	logger   *logger.Logger
}

func NewService(store repository.Store, events event.Publisher, l *logger.Logger) *Service {
	return &Service{
		chats:    store.Chats(),
		bookings: store.Bookings(),
		events:   events,
		logger:   l.With("chat"),
	}
}

// GetThread returns the booking's thread, creating it on first access
func (s *Service) GetThread(ctx context.Context, actor model.Principal, bookingID uuid.UUID) (*model.Chat, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForBooking(booking), permission.ActionRead); err != nil {
		return nil, err
	}

	chat, err := s.chats.GetByBooking(ctx, bookingID)
	if err == nil {
		return chat, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	chat = &model.Chat{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		Messages:   []model.ChatMessage{},
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		// lost a race with another first access
		if apperrors.IsDuplicate(err) {
			return s.chats.GetByBooking(ctx, bookingID)
		}
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat, nil
}

// SendMessage appends to an existing thread. Only the two parties may post.
func (s *Service) SendMessage(ctx context.Context, actor model.Principal, bookingID uuid.UUID, text string) (*model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.Validation("message is required")
	}
	if len(text) > MaxMessageLen {
		return nil, apperrors.Validationf("message must not exceed %d characters", MaxMessageLen)
	}

	chat, err := s.chats.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := permission.Authorize(actor, permission.ForChat(chat), permission.ActionMessage); err != nil {
		return nil, err
	}

	msg := &model.ChatMessage{
		ChatID:   chat.ID,
		SenderID: actor.ID,
		Message:  text,
	}
	if err := s.chats.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.events.Emit(ctx, model.EventChatMessageSent, actor.ID, map[string]interface{}{
		"bookingId":  bookingID,
		"customerId": chat.CustomerID,
		"providerId": chat.ProviderID,
		"messageId":  msg.ID,
	})
	return msg, nil
}
