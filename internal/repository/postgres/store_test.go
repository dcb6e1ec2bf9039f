package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/marketplace-api/internal/model"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(sqlx.NewDb(db, "postgres"))
	now := func() time.Time { return fixedNow }
	store.users.now = now
	store.services.now = now
	store.bookings.now = now
	store.reviews.now = now
	store.chats.now = now
	return store, mock
}

func TestUserGetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := store.Users().Get(context.Background(), id)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmailScansRow(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "phone", "role", "is_verified",
		"verification_status", "city", "service_locations", "created_at", "updated_at",
	}).AddRow(id.String(), "Asha", "asha@example.com", "hash", "9999", "provider", false,
		"pending", nil, "{Vashi,Sanpada}", fixedNow, fixedNow)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("asha@example.com").
		WillReturnRows(rows)

	user, err := store.Users().GetByEmail(context.Background(), "Asha@Example.com")
	require.NoError(t, err)
	assert.Equal(t, id, user.ID)
	assert.Equal(t, model.RoleProvider, user.Role)
	assert.Nil(t, user.City)
	assert.Equal(t, pq.StringArray{"Vashi", "Sanpada"}, user.ServiceLocations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := store.Users().Create(context.Background(), &model.User{Email: "dup@example.com", Role: model.RoleCustomer})
	require.Error(t, err)
	assert.True(t, apperrors.IsDuplicate(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserSetVerified(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE users").
		WithArgs(true, model.VerificationVerified, fixedNow, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Users().SetVerified(context.Background(), id, model.VerificationVerified))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListFilters(t *testing.T) {
	store, mock := newMockStore(t)
	verified := false

	mock.ExpectQuery("FROM users WHERE role = \\$1 AND is_verified = \\$2 ORDER BY created_at DESC").
		WithArgs(model.RoleProvider, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, err := store.Users().List(context.Background(), &model.UserFilters{Role: model.RoleProvider, IsVerified: &verified})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateStatusMissing(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec("UPDATE bookings SET status = \\$1").
		WithArgs(model.BookingStatusAccepted, fixedNow, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Bookings().UpdateStatus(context.Background(), id, model.BookingStatusAccepted)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListNewestFirst(t *testing.T) {
	store, mock := newMockStore(t)
	customer := uuid.New()

	mock.ExpectQuery("FROM bookings WHERE customer_id = \\$1 ORDER BY created_at DESC").
		WithArgs(customer).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	bookings, err := store.Bookings().List(context.Background(), &model.BookingFilters{CustomerID: &customer})
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingAggregates(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE\\(SUM\\(price\\), 0\\) FROM bookings WHERE status = \\$1").
		WithArgs(model.BookingStatusCompleted).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("1250.50"))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM bookings WHERE status = \\$1 AND address ILIKE").
		WithArgs(model.BookingStatusCancelled, "Vashi").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	total, err := store.Bookings().SumPrice(ctx, model.BookingStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, 1250.50, total)

	count, err := store.Bookings().CountByAddress(ctx, model.BookingStatusCancelled, "Vashi")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceListKeyword(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	provider := uuid.New()

	rows := sqlmock.NewRows([]string{
		"id", "provider_id", "title", "description", "category", "price",
		"duration_minutes", "is_active", "created_at", "updated_at",
	}).AddRow(id.String(), provider.String(), "Pipe repair", "Leaks fixed", "Plumbing", "500.00", 60, true, fixedNow, fixedNow)

	mock.ExpectQuery("WHERE \\(title ILIKE \\$1 OR description ILIKE \\$1\\) AND is_active ORDER BY created_at DESC").
		WithArgs("%pipe%").
		WillReturnRows(rows)

	services, err := store.Services().List(context.Background(), &model.ServiceFilters{Keyword: "pipe", ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 500.0, services[0].Price)
	assert.Equal(t, model.CategoryPlumbing, services[0].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&pq.Error{Code: uniqueViolation})

	err := store.Reviews().Create(context.Background(), &model.Review{Rating: 4})
	assert.True(t, apperrors.IsDuplicate(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceCreateUnknownProvider(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO services").
		WillReturnError(&pq.Error{Code: foreignKeyViolation})

	err := store.Services().Create(context.Background(), &model.Service{ProviderID: uuid.New(), Title: "Paint"})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewCreateUnknownBooking(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&pq.Error{Code: foreignKeyViolation})

	err := store.Reviews().Create(context.Background(), &model.Review{Rating: 4})
	assert.True(t, apperrors.IsNotFound(err))
	assert.False(t, apperrors.IsDuplicate(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRatingSummaries(t *testing.T) {
	store, mock := newMockStore(t)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery("WHERE is_visible AND service_id IN \\(\\$1, \\$2\\)").
		WithArgs(a, b).
		WillReturnRows(sqlmock.NewRows([]string{"service_id", "average", "count"}).
			AddRow(a.String(), "4.5000000000000000", 2))

	summaries, err := store.Reviews().RatingSummaries(context.Background(), []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, model.RatingSummary{Average: 4.5, Count: 2}, summaries[a])
	_, ok := summaries[b]
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewRatingSummariesEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	summaries, err := store.Reviews().RatingSummaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatAppendMessage(t *testing.T) {
	store, mock := newMockStore(t)
	chatID := uuid.New()
	sender := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(sqlmock.AnyArg(), chatID, sender, "On my way", fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE chats SET updated_at = \\$1 WHERE id = \\$2").
		WithArgs(fixedNow, chatID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	msg := &model.ChatMessage{ChatID: chatID, SenderID: sender, Message: "On my way"}
	require.NoError(t, store.Chats().AppendMessage(context.Background(), msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.Equal(t, fixedNow, msg.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatGetByBookingLoadsMessages(t *testing.T) {
	store, mock := newMockStore(t)
	chatID, bookingID := uuid.New(), uuid.New()
	customer, provider := uuid.New(), uuid.New()

	mock.ExpectQuery("FROM chats WHERE booking_id = \\$1").
		WithArgs(bookingID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "customer_id", "provider_id", "created_at", "updated_at"}).
			AddRow(chatID.String(), bookingID.String(), customer.String(), provider.String(), fixedNow, fixedNow))
	mock.ExpectQuery("FROM chat_messages WHERE chat_id = \\$1").
		WithArgs(chatID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "chat_id", "sender_id", "message", "sent_at"}).
			AddRow(uuid.New().String(), chatID.String(), customer.String(), "hello", fixedNow))

	chat, err := store.Chats().GetByBooking(context.Background(), bookingID)
	require.NoError(t, err)
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, "hello", chat.Messages[0].Message)
	assert.Equal(t, customer, chat.Messages[0].SenderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
