package service

import (
	"context"
	"time"

	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/pricing"
	"github.com/iliyamo/hall-booking/internal/queue"
)

// VenueRepository is the venue storage used by the services.
type VenueRepository interface {
	Create(ctx context.Context, v *model.Venue) error
	GetByID(ctx context.Context, id uint64) (*model.Venue, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error)
	List(ctx context.Context, onlyAvailable bool, limit, offset int) ([]model.Venue, int, error)
	Update(ctx context.Context, v *model.Venue) error
	Delete(ctx context.Context, id uint64) error
}

// BookingRepository is the booking storage. Create must perform the
// overlap check and the insert atomically per venue; Transition must
// read and update the status under a lock on the booking.
type BookingRepository interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (*model.BookingDetail, error)
	Transition(ctx context.Context, id uint64, decide func(cur *model.BookingDetail) (model.BookingStatus, error)) (*model.BookingDetail, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	ListAll(ctx context.Context) ([]model.BookingDetail, error)
	CountForUser(ctx context.Context, userID uint64, now time.Time) (total, upcoming int, err error)
	ListBlocking(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error)
}

// EventPublisher delivers booking domain events to the broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// PriceSuggester is satisfied by *pricing.Engine.
type PriceSuggester interface {
	Suggest(base float64, at time.Time, capacity int) (pricing.Suggestion, error)
}
