package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/email"
	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/messaging"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

// Channels the worker subscribes to
var Channels = []string{
	model.EventBookingCreated,
	model.EventBookingStatusChanged,
	model.EventReviewCreated,
	model.EventChatMessageSent,
}

type envelope struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	ActorID uuid.UUID       `json:"actorId"`
	Payload json.RawMessage `json:"payload"`
}

// parties is the subset of every payload the dispatcher needs
type parties struct {
	BookingID  uuid.UUID           `json:"bookingId"`
	ID         uuid.UUID           `json:"id"`
	CustomerID uuid.UUID           `json:"customerId"`
	ProviderID uuid.UUID           `json:"providerId"`
	To         model.BookingStatus `json:"to"`
	Rating     int                 `json:"rating"`
}

// Service mails the counterparty of each domain event. Failed sends are
// logged and counted, never retried.
type Service struct {
	users   repository.UserRepository
	mailer  email.Service
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(users repository.UserRepository, mailer email.Service, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		users:   users,
		mailer:  mailer,
		metrics: m,
		logger:  l.With("notification"),
	}
}

// Run consumes msgs until the channel closes or ctx is done
func (s *Service) Run(ctx context.Context, msgs <-chan messaging.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			if err := s.Handle(ctx, msg); err != nil {
				s.logger.Error(err, "failed to handle event", "channel", msg.Channel)
			}
		}
	}
}

func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	var evt envelope
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	var p parties
	if len(evt.Payload) > 0 {
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	bookingID := p.BookingID
	if bookingID == uuid.Nil && evt.Type == model.EventBookingCreated {
		bookingID = p.ID
	}

	var subject, body string
	switch evt.Type {
	case model.EventBookingCreated:
		subject = "New booking request"
		body = fmt.Sprintf("You have a new booking request (%s).", bookingID)
	case model.EventBookingStatusChanged:
		subject = "Booking status updated"
		body = fmt.Sprintf("Booking %s is now %s.", bookingID, p.To)
	case model.EventReviewCreated:
		subject = "New review"
		body = fmt.Sprintf("A customer rated your service %d/5.", p.Rating)
	case model.EventChatMessageSent:
		subject = "New message"
		body = fmt.Sprintf("You have a new message about booking %s.", bookingID)
	default:
		return nil
	}

	recipient := counterparty(evt.ActorID, p)
	if recipient == uuid.Nil {
		return nil
	}
	user, err := s.users.Get(ctx, recipient)
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues(evt.Type, "skipped").Inc()
		return fmt.Errorf("failed to get recipient: %w", err)
	}

	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		s.metrics.NotificationsSent.WithLabelValues(evt.Type, "failed").Inc()
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(evt.Type, "sent").Inc()
	s.logger.Debug("notification sent", "event_type", evt.Type, "recipient_id", recipient.String())
	return nil
}

// counterparty is whichever booking party did not cause the event. Admin
// actions notify the customer.
func counterparty(actor uuid.UUID, p parties) uuid.UUID {
	switch actor {
	case p.CustomerID:
		return p.ProviderID
	case p.ProviderID:
		return p.CustomerID
	default:
		return p.CustomerID
	}
}
