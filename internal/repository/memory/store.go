// Package memory is an in-process entity store used by the memory database
// driver and by service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	"github.com/jwalitptl/marketplace-api/internal/repository"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

// Store keeps every entity in maps guarded by a single lock
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[uuid.UUID]model.User
	services map[uuid.UUID]model.Service
	bookings map[uuid.UUID]model.Booking
	reviews  map[uuid.UUID]model.Review
	chats    map[uuid.UUID]model.Chat // keyed by booking id
}

func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[uuid.UUID]model.User),
		services: make(map[uuid.UUID]model.Service),
		bookings: make(map[uuid.UUID]model.Booking),
		reviews:  make(map[uuid.UUID]model.Review),
		chats:    make(map[uuid.UUID]model.Chat),
	}
}

// SetClock overrides the timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Users() repository.UserRepository       { return (*userRepo)(s) }
func (s *Store) Services() repository.ServiceRepository { return (*serviceRepo)(s) }
func (s *Store) Bookings() repository.BookingRepository { return (*bookingRepo)(s) }
func (s *Store) Reviews() repository.ReviewRepository   { return (*reviewRepo)(s) }
func (s *Store) Chats() repository.ChatRepository       { return (*chatRepo)(s) }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

type userRepo Store

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(user.Email)
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.Duplicate("email already registered", nil)
		}
	}
	user.Touch(r.now())
	if user.ServiceLocations == nil {
		user.ServiceLocations = []string{}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("user", nil)
}

func (r *userRepo) SetVerified(ctx context.Context, id uuid.UUID, status model.VerificationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("user", nil)
	}
	u.VerificationStatus = status
	u.IsVerified = status == model.VerificationVerified
	u.UpdatedAt = r.now()
	r.users[id] = u
	return nil
}

// Delete removes the user and their service listings. Bookings, chats and
// reviews keep their history.
func (r *userRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return apperrors.NotFound("user", nil)
	}
	delete(r.users, id)
	for sid, svc := range r.services {
		if svc.ProviderID == id {
			delete(r.services, sid)
		}
	}
	return nil
}

func matchUser(u model.User, filters *model.UserFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Role != "" && u.Role != filters.Role {
		return false
	}
	if filters.IsVerified != nil && u.IsVerified != *filters.IsVerified {
		return false
	}
	return true
}

func (r *userRepo) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := []*model.User{}
	for _, u := range r.users {
		if matchUser(u, filters) {
			u := u
			users = append(users, &u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepo) Count(ctx context.Context, filters *model.UserFilters) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, u := range r.users {
		if matchUser(u, filters) {
			count++
		}
	}
	return count, nil
}

type serviceRepo Store

func (r *serviceRepo) Create(ctx context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	service.Touch(r.now())
	r.services[service.ID] = *service
	return nil
}

func (r *serviceRepo) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	svc, ok := r.services[id]
	if !ok {
		return nil, apperrors.NotFound("service", nil)
	}
	return &svc, nil
}

func (r *serviceRepo) Update(ctx context.Context, service *model.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[service.ID]; !ok {
		return apperrors.NotFound("service", nil)
	}
	service.UpdatedAt = r.now()
	r.services[service.ID] = *service
	return nil
}

func (r *serviceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.services[id]; !ok {
		return apperrors.NotFound("service", nil)
	}
	delete(r.services, id)
	return nil
}

func (r *serviceRepo) List(ctx context.Context, filters *model.ServiceFilters) ([]*model.Service, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := []*model.Service{}
	for _, svc := range r.services {
		if filters != nil {
			if filters.ActiveOnly && !svc.IsActive {
				continue
			}
			if filters.ProviderID != nil && svc.ProviderID != *filters.ProviderID {
				continue
			}
			if kw := strings.ToLower(filters.Keyword); kw != "" &&
				!strings.Contains(strings.ToLower(svc.Title), kw) &&
				!strings.Contains(strings.ToLower(svc.Description), kw) {
				continue
			}
		}
		svc := svc
		services = append(services, &svc)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].CreatedAt.After(services[j].CreatedAt) })
	return services, nil
}

func (r *serviceRepo) CountActive(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, svc := range r.services {
		if svc.IsActive {
			count++
		}
	}
	return count, nil
}

type bookingRepo Store

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking.Touch(r.now())
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *bookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("booking", nil)
	}
	return &b, nil
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return apperrors.NotFound("booking", nil)
	}
	b.Status = status
	b.UpdatedAt = r.now()
	r.bookings[id] = b
	return nil
}

func (r *bookingRepo) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := []*model.Booking{}
	for _, b := range r.bookings {
		if filters != nil {
			if filters.CustomerID != nil && b.CustomerID != *filters.CustomerID {
				continue
			}
			if filters.ProviderID != nil && b.ProviderID != *filters.ProviderID {
				continue
			}
			if filters.Status != "" && b.Status != filters.Status {
				continue
			}
		}
		b := b
		bookings = append(bookings, &b)
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].CreatedAt.After(bookings[j].CreatedAt) })
	return bookings, nil
}

func (r *bookingRepo) SumPrice(ctx context.Context, status model.BookingStatus) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, b := range r.bookings {
		if b.Status == status {
			total += b.Price
		}
	}
	return total, nil
}

func (r *bookingRepo) CountByAddress(ctx context.Context, status model.BookingStatus, keyword string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword = strings.ToLower(keyword)
	count := 0
	for _, b := range r.bookings {
		if b.Status == status && strings.Contains(strings.ToLower(b.Address), keyword) {
			count++
		}
	}
	return count, nil
}

type reviewRepo Store

func (r *reviewRepo) Create(ctx context.Context, review *model.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rv := range r.reviews {
		if rv.BookingID == review.BookingID && rv.CustomerID == review.CustomerID {
			return apperrors.Duplicate("booking already reviewed", nil)
		}
	}
	review.Touch(r.now())
	r.reviews[review.ID] = *review
	return nil
}

func (r *reviewRepo) Get(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", nil)
	}
	return &rv, nil
}

func (r *reviewRepo) FindByBookingAndCustomer(ctx context.Context, bookingID, customerID uuid.UUID) (*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rv := range r.reviews {
		if rv.BookingID == bookingID && rv.CustomerID == customerID {
			rv := rv
			return &rv, nil
		}
	}
	return nil, apperrors.NotFound("review", nil)
}

func (r *reviewRepo) update(id uuid.UUID, fn func(*model.Review)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rv, ok := r.reviews[id]
	if !ok {
		return apperrors.NotFound("review", nil)
	}
	fn(&rv)
	rv.UpdatedAt = r.now()
	r.reviews[id] = rv
	return nil
}

func (r *reviewRepo) SetFlagged(ctx context.Context, id uuid.UUID, flagged bool) error {
	return r.update(id, func(rv *model.Review) { rv.IsFlagged = flagged })
}

func (r *reviewRepo) SetVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	return r.update(id, func(rv *model.Review) { rv.IsVisible = visible })
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return apperrors.NotFound("review", nil)
	}
	delete(r.reviews, id)
	return nil
}

func (r *reviewRepo) List(ctx context.Context, filters *model.ReviewFilters) ([]*model.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reviews := []*model.Review{}
	for _, rv := range r.reviews {
		if filters != nil {
			if filters.ServiceID != nil && rv.ServiceID != *filters.ServiceID {
				continue
			}
			if filters.ProviderID != nil && rv.ProviderID != *filters.ProviderID {
				continue
			}
			if filters.VisibleOnly && !rv.IsVisible {
				continue
			}
			if filters.FlaggedOnly && !rv.IsFlagged {
				continue
			}
		}
		rv := rv
		reviews = append(reviews, &rv)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (r *reviewRepo) RatingSummaries(ctx context.Context, serviceIDs []uuid.UUID) (map[uuid.UUID]model.RatingSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := make(map[uuid.UUID]bool, len(serviceIDs))
	for _, id := range serviceIDs {
		wanted[id] = true
	}

	sums := make(map[uuid.UUID]int)
	counts := make(map[uuid.UUID]int)
	for _, rv := range r.reviews {
		if rv.IsVisible && wanted[rv.ServiceID] {
			sums[rv.ServiceID] += rv.Rating
			counts[rv.ServiceID]++
		}
	}

	summaries := make(map[uuid.UUID]model.RatingSummary, len(counts))
	for id, n := range counts {
		summaries[id] = model.RatingSummary{Average: float64(sums[id]) / float64(n), Count: n}
	}
	return summaries, nil
}

type chatRepo Store

func copyChat(c model.Chat) *model.Chat {
	msgs := make([]model.ChatMessage, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return &c
}

func (r *chatRepo) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*model.Chat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.chats[bookingID]
	if !ok {
		return nil, apperrors.NotFound("chat", nil)
	}
	return copyChat(c), nil
}

func (r *chatRepo) Create(ctx context.Context, chat *model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.chats[chat.BookingID]; ok {
		return apperrors.Duplicate("chat already exists", nil)
	}
	chat.Touch(r.now())
	if chat.Messages == nil {
		chat.Messages = []model.ChatMessage{}
	}
	r.chats[chat.BookingID] = *copyChat(*chat)
	return nil
}

func (r *chatRepo) AppendMessage(ctx context.Context, msg *model.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for bookingID, c := range r.chats {
		if c.ID != msg.ChatID {
			continue
		}
		if msg.ID == uuid.Nil {
			msg.ID = uuid.New()
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = r.now()
		}
		c.Messages = append(c.Messages, *msg)
		c.UpdatedAt = msg.Timestamp
		r.chats[bookingID] = c
		return nil
	}
	return apperrors.NotFound("chat", nil)
}

