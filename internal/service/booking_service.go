package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/hall-booking/internal/logger"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/queue"
	"github.com/iliyamo/hall-booking/internal/repository"
)

// BookingRequest carries a submission. Times are converted to UTC.
type BookingRequest struct {
	VenueID   uint64
	UserID    uint64
	Start     time.Time
	End       time.Time
	EventName *string
	EventType *string
	Attendees *int
	Remarks   *string
}

// UserStats summarises a user's bookings.
type UserStats struct {
	Total    int `json:"total_bookings"`
	Upcoming int `json:"upcoming_bookings"`
}

// maxAvailabilityWindow bounds Availability queries.
const maxAvailabilityWindow = 93 * 24 * time.Hour

// BookingService implements submission, moderation and listing of bookings.
type BookingService struct {
	venues   VenueRepository
	bookings BookingRepository
	events   EventPublisher
	now      func() time.Time
}

// NewBookingService wires the service. events may be nil, in which case
// no domain events are published.
func NewBookingService(venues VenueRepository, bookings BookingRepository, events EventPublisher) *BookingService {
	return &BookingService{
		venues:   venues,
		bookings: bookings,
		events:   events,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates req, charges hours × hourly rate and stores a PENDING
// booking unless it overlaps a blocking booking of the same venue.
func (s *BookingService) Submit(ctx context.Context, req BookingRequest) (*model.Booking, error) {
	start, end := req.Start.UTC(), req.End.UTC()
	if !end.After(start) {
		return nil, fmt.Errorf("end must be after start: %w", ErrInvalidArgument)
	}
	if req.Attendees != nil && *req.Attendees < 0 {
		return nil, fmt.Errorf("attendees must not be negative: %w", ErrInvalidArgument)
	}

	venue, err := s.venues.GetByID(ctx, req.VenueID)
	if err != nil {
		return nil, wrapRepoErr("get venue", err)
	}

	iv := model.Interval{Start: start, End: end}
	b := &model.Booking{
		VenueID:     venue.ID,
		UserID:      req.UserID,
		StartTime:   start,
		EndTime:     end,
		EventName:   req.EventName,
		EventType:   req.EventType,
		Attendees:   req.Attendees,
		TotalAmount: iv.Hours() * venue.Rate(),
		Status:      model.BookingPending,
		Remarks:     req.Remarks,
		CreatedAt:   s.now(),
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, wrapRepoErr("create booking", err)
	}

	logger.FromContext(ctx).Info().
		Uint64("booking_id", b.ID).
		Uint64("venue_id", b.VenueID).
		Uint64("user_id", b.UserID).
		Float64("total_amount", b.TotalAmount).
		Msg("booking submitted")

	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, venue.OwnerID, "", s.now()))
	return b, nil
}

// Transition moves a booking to target on behalf of actor according to
// the transition table. The status read and write happen under a row
// lock so concurrent transitions of one booking cannot both apply.
func (s *BookingService) Transition(ctx context.Context, bookingID uint64, target model.BookingStatus, actor model.Actor) (*model.BookingDetail, error) {
	target, err := model.ParseBookingStatus(string(target))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var prev model.BookingStatus
	updated, err := s.bookings.Transition(ctx, bookingID, func(cur *model.BookingDetail) (model.BookingStatus, error) {
		if err := checkTransition(cur, target, actor); err != nil {
			return "", err
		}
		prev = cur.Status
		return target, nil
	})
	if err != nil {
		return nil, wrapRepoErr("transition booking", err)
	}

	logger.FromContext(ctx).Info().
		Uint64("booking_id", bookingID).
		Str("from", string(prev)).
		Str("to", string(target)).
		Uint64("actor_id", actor.UserID).
		Msg("booking status changed")

	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingStatusChanged, &updated.Booking, updated.VenueOwnerID, prev, s.now()))
	return updated, nil
}

// Get returns a booking visible to its requester, the venue owner or an admin.
func (s *BookingService) Get(ctx context.Context, bookingID uint64, actor model.Actor) (*model.BookingDetail, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRepoErr("get booking", err)
	}
	if relation(b, actor) == 0 {
		return nil, fmt.Errorf("booking %d: %w", bookingID, ErrForbidden)
	}
	return b, nil
}

// ListForOwner returns bookings of the owner's venues, newest first.
func (s *BookingService) ListForOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error) {
	out, err := s.bookings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list owner bookings: %w", err)
	}
	return out, nil
}

// ListForUser returns the user's own bookings, newest first.
func (s *BookingService) ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	out, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user bookings: %w", err)
	}
	return out, nil
}

// ListAll returns every booking. Callers restrict it to administrators.
func (s *BookingService) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	out, err := s.bookings.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}

// UserStats counts the user's bookings and the blocking ones still ahead.
func (s *BookingService) UserStats(ctx context.Context, userID uint64) (UserStats, error) {
	total, upcoming, err := s.bookings.CountForUser(ctx, userID, s.now())
	if err != nil {
		return UserStats{}, fmt.Errorf("count bookings: %w", err)
	}
	return UserStats{Total: total, Upcoming: upcoming}, nil
}

// Availability returns the occupied intervals of a venue within [from, to).
func (s *BookingService) Availability(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error) {
	from, to = from.UTC(), to.UTC()
	if !to.After(from) {
		return nil, fmt.Errorf("window end must be after start: %w", ErrInvalidArgument)
	}
	if to.Sub(from) > maxAvailabilityWindow {
		return nil, fmt.Errorf("window longer than %s: %w", maxAvailabilityWindow, ErrInvalidArgument)
	}
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return nil, wrapRepoErr("get venue", err)
	}
	out, err := s.bookings.ListBlocking(ctx, venueID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list blocking: %w", err)
	}
	return out, nil
}

// publish is best effort: failures are logged and never surface to callers.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("event", ev.Type).
			Uint64("booking_id", ev.BookingID).
			Msg("publish booking event failed")
	}
}

// wrapRepoErr maps repository sentinels onto service errors. Errors that
// already carry a service sentinel pass through with added context.
func wrapRepoErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrVenueNotFound), errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return fmt.Errorf("%s: booking overlaps an existing booking: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
