package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
)

type chatRepository struct {
	BaseRepository
}

func (r *chatRepository) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Chat, error) {
	query := `
		SELECT id, booking_id, customer_id, provider_id, created_at, updated_at
		FROM chats WHERE booking_id = $1
	`
	var chat model.Chat
	if err := r.db.GetContext(ctx, &chat, query, bookingID); err != nil {
		return nil, notFound("chat", err)
	}

	chat.Messages = []model.ChatMessage{}
	messages := `
		SELECT id, chat_id, sender_id, message, sent_at
		FROM chat_messages WHERE chat_id = $1
		ORDER BY sent_at ASC
	`
	if err := r.db.SelectContext(ctx, &chat.Messages, messages, chat.ID); err != nil {
		return nil, fmt.Errorf("failed to get chat messages: %w", err)
	}
	return &chat, nil
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	query := `
		INSERT INTO chats (id, booking_id, customer_id, provider_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	chat.Touch(r.now())
	if chat.Messages == nil {
		chat.Messages = []model.ChatMessage{}
	}

	_, err := r.db.ExecContext(ctx, query,
		chat.ID, chat.BookingID, chat.CustomerID, chat.ProviderID, chat.CreatedAt, chat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", missingReference("booking", duplicate("chat already exists", err)))
	}
	return nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = r.now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_messages (id, chat_id, sender_id, message, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.ChatID, msg.SenderID, msg.Message, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE chats SET updated_at = $1 WHERE id = $2`, msg.Timestamp, msg.ChatID)
	if err != nil {
		return fmt.Errorf("failed to touch chat: %w", err)
	}
	if err := expectOne("chat", result); err != nil {
		return err
	}

	return tx.Commit()
}
