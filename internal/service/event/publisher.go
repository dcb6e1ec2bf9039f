package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/messaging"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

// Publisher emits domain events after a mutation has been persisted.
// Emit never fails the caller; delivery is best effort and never retried.
type Publisher interface {
	Emit(ctx context.Context, eventType string, actorID uuid.UUID, payload interface{})
}

type BrokerPublisher struct {
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *logger.Logger
	now     func() time.Time
}

func NewPublisher(broker messaging.Broker, m *metrics.Metrics, l *logger.Logger) *BrokerPublisher {
	return &BrokerPublisher{
		broker:  broker,
		metrics: m,
		logger:  l.With("events"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (p *BrokerPublisher) Emit(ctx context.Context, eventType string, actorID uuid.UUID, payload interface{}) {
	evt := model.Event{
		ID:         uuid.New(),
		Type:       eventType,
		ActorID:    actorID,
		OccurredAt: p.now(),
		Payload:    payload,
	}

	if err := p.broker.Publish(ctx, eventType, evt); err != nil {
		p.metrics.EventsPublished.WithLabelValues(eventType, "failed").Inc()
		p.logger.Error(err, "failed to publish event", "event_type", eventType, "event_id", evt.ID.String())
		return
	}
	p.metrics.EventsPublished.WithLabelValues(eventType, "published").Inc()
}

// Nop discards every event
type Nop struct{}

func (Nop) Emit(context.Context, string, uuid.UUID, interface{}) {}
