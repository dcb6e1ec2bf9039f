package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository/memory"
	"github.com/jwalitptl/marketplace-api/pkg/logger"
	"github.com/jwalitptl/marketplace-api/pkg/messaging"
	"github.com/jwalitptl/marketplace-api/pkg/metrics"
)

type sentMail struct{ to, subject, body string }

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

type setup struct {
	svc      *Service
	mailer   *fakeMailer
	metrics  *metrics.Metrics
	customer *model.User
	provider *model.User
}

func newSetup(t *testing.T) *setup {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	customer := &model.User{Email: "c@example.com", Role: model.RoleCustomer}
	provider := &model.User{Email: "p@example.com", Role: model.RoleProvider}
	require.NoError(t, store.Users().Create(ctx, customer))
	require.NoError(t, store.Users().Create(ctx, provider))

	mailer := &fakeMailer{}
	m := metrics.NewNop()
	return &setup{
		svc:      NewService(store.Users(), mailer, m, logger.Nop()),
		mailer:   mailer,
		metrics:  m,
		customer: customer,
		provider: provider,
	}
}

func message(t *testing.T, eventType string, actor uuid.UUID, payload interface{}) messaging.Message {
	t.Helper()
	raw, err := json.Marshal(model.Event{ID: uuid.New(), Type: eventType, ActorID: actor, OccurredAt: time.Now(), Payload: payload})
	require.NoError(t, err)
	return messaging.Message{Channel: eventType, Payload: raw}
}

func TestStatusChangeMailsCounterparty(t *testing.T) {
	s := newSetup(t)
	bookingID := uuid.New()

	msg := message(t, model.EventBookingStatusChanged, s.provider.ID, model.BookingStatusChanged{
		BookingID:  bookingID,
		CustomerID: s.customer.ID,
		ProviderID: s.provider.ID,
		From:       model.BookingStatusPending,
		To:         model.BookingStatusAccepted,
	})
	require.NoError(t, s.svc.Handle(context.Background(), msg))

	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "c@example.com", s.mailer.sent[0].to)
	assert.Contains(t, s.mailer.sent[0].body, "accepted")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues(model.EventBookingStatusChanged, "sent")))
}

func TestBookingCreatedMailsProvider(t *testing.T) {
	s := newSetup(t)
	b := &model.Booking{Base: model.Base{ID: uuid.New()}, CustomerID: s.customer.ID, ProviderID: s.provider.ID}

	require.NoError(t, s.svc.Handle(context.Background(), message(t, model.EventBookingCreated, s.customer.ID, b)))
	require.Len(t, s.mailer.sent, 1)
	assert.Equal(t, "p@example.com", s.mailer.sent[0].to)
	assert.Contains(t, s.mailer.sent[0].body, b.ID.String())
}

func TestMailFailureIsCountedNotRetried(t *testing.T) {
	s := newSetup(t)
	s.mailer.err = errors.New("smtp down")

	msg := message(t, model.EventReviewCreated, s.customer.ID, model.Review{CustomerID: s.customer.ID, ProviderID: s.provider.ID, Rating: 5})
	assert.Error(t, s.svc.Handle(context.Background(), msg))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.NotificationsSent.WithLabelValues(model.EventReviewCreated, "failed")))
}

func TestRunStopsWhenChannelCloses(t *testing.T) {
	s := newSetup(t)
	msgs := make(chan messaging.Message, 2)
	msgs <- messaging.Message{Channel: "unknown", Payload: []byte(`{"type":"unknown"}`)}
	msgs <- messaging.Message{Channel: "broken", Payload: []byte(`not json`)}
	close(msgs)

	done := make(chan struct{})
	go func() {
		s.svc.Run(context.Background(), msgs)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Empty(t, s.mailer.sent)
}
