package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/queue"
	"github.com/iliyamo/hall-booking/internal/repository"
)

// memStore is an in-memory venue and booking store. Create holds a
// per-venue mutex for the check-then-insert like the SQL repository
// holds the venue row lock.
type memStore struct {
	mu       sync.Mutex
	venues   map[uint64]*model.Venue
	bookings map[uint64]*model.Booking
	nextID   uint64
	nextVen  uint64

	venueLocks sync.Map // uint64 -> *sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{venues: map[uint64]*model.Venue{}, bookings: map[uint64]*model.Booking{}}
}

func (m *memStore) addVenue(v model.Venue) *model.Venue {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == 0 {
		m.nextVen++
		v.ID = m.nextVen
	}
	m.venues[v.ID] = &v
	return &v
}

func (m *memStore) venueLock(id uint64) *sync.Mutex {
	l, _ := m.venueLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// VenueRepository

func (m *memStore) Create(ctx context.Context, v *model.Venue) error {
	cp := *m.addVenue(*v)
	*v = cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.venues[id]
	if !ok {
		return nil, repository.ErrVenueNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Venue{}
	for _, v := range m.venues {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) List(ctx context.Context, onlyAvailable bool, limit, offset int) ([]model.Venue, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []model.Venue{}
	for _, v := range m.venues {
		if !onlyAvailable || v.Available {
			all = append(all, *v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memStore) Update(ctx context.Context, v *model.Venue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.venues[v.ID]; !ok {
		return repository.ErrVenueNotFound
	}
	cp := *v
	m.venues[v.ID] = &cp
	return nil
}

func (m *memStore) Delete(ctx context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.venues[id]; !ok {
		return repository.ErrVenueNotFound
	}
	for _, b := range m.bookings {
		if b.VenueID == id {
			return repository.ErrConflict
		}
	}
	delete(m.venues, id)
	return nil
}

// bookingStore adapts memStore to BookingRepository; the method sets of
// the two ports collide on Create/GetByID.
type bookingStore struct{ *memStore }

func (s bookingStore) Create(ctx context.Context, b *model.Booking) error {
	l := s.venueLock(b.VenueID)
	l.Lock()
	defer l.Unlock()

	s.mu.Lock()
	if _, ok := s.venues[b.VenueID]; !ok {
		s.mu.Unlock()
		return repository.ErrVenueNotFound
	}
	var existing []model.Booking
	for _, e := range s.bookings {
		if e.VenueID == b.VenueID {
			existing = append(existing, *e)
		}
	}
	s.mu.Unlock()

	// widen the race window between check and insert
	time.Sleep(time.Millisecond)

	for _, e := range existing {
		if e.Status.Blocking() && e.Interval().Overlaps(b.Interval()) {
			return repository.ErrConflict
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	b.ID = s.nextID
	b.UpdatedAt = b.CreatedAt
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s bookingStore) detail(b *model.Booking) model.BookingDetail {
	d := model.BookingDetail{Booking: *b}
	if v, ok := s.venues[b.VenueID]; ok {
		d.VenueName = v.Name
		d.VenueOwnerID = v.OwnerID
	}
	return d
}

func (s bookingStore) GetByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	d := s.detail(b)
	return &d, nil
}

func (s bookingStore) Transition(ctx context.Context, id uint64, decide func(cur *model.BookingDetail) (model.BookingStatus, error)) (*model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cur := s.detail(b)
	next, err := decide(&cur)
	if err != nil {
		return nil, err
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()
	d := s.detail(b)
	return &d, nil
}

func (s bookingStore) list(keep func(d model.BookingDetail) bool) []model.BookingDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.BookingDetail{}
	for _, b := range s.bookings {
		if d := s.detail(b); keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s bookingStore) ListByOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error) {
	return s.list(func(d model.BookingDetail) bool { return d.VenueOwnerID == ownerID }), nil
}

func (s bookingStore) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	return s.list(func(d model.BookingDetail) bool { return d.UserID == userID }), nil
}

func (s bookingStore) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	return s.list(func(model.BookingDetail) bool { return true }), nil
}

func (s bookingStore) CountForUser(ctx context.Context, userID uint64, now time.Time) (int, int, error) {
	all := s.list(func(d model.BookingDetail) bool { return d.UserID == userID })
	upcoming := 0
	for _, d := range all {
		if d.Status.Blocking() && !d.StartTime.Before(now) {
			upcoming++
		}
	}
	return len(all), upcoming, nil
}

func (s bookingStore) ListBlocking(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error) {
	win := model.Interval{Start: from, End: to}
	all := s.list(func(d model.BookingDetail) bool {
		return d.VenueID == venueID && d.Status.Blocking() && d.Interval().Overlaps(win)
	})
	out := make([]model.Interval, 0, len(all))
	for _, d := range all {
		out = append(out, d.Interval())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// mockPublisher records published events.
type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}
