// Package queue defines booking events exchanged over RabbitMQ together
// with the publisher and the log-writing consumer.
package queue

import (
	"time"

	"github.com/iliyamo/hall-booking/internal/model"
)

// BookingQueue is the durable queue carrying every booking event.
const BookingQueue = "booking.events"

// Event types.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created or changes status.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	Type           string  `json:"type"`
	BookingID      uint64  `json:"booking_id"`
	VenueID        uint64  `json:"venue_id"`
	UserID         uint64  `json:"user_id"`
	OwnerID        uint64  `json:"owner_id"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status,omitempty"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	TotalAmount    float64 `json:"total_amount"`
	OccurredAt     string  `json:"occurred_at"`
}

// NewBookingEvent builds an event of type typ from b. prev is empty for
// creation events.
func NewBookingEvent(typ string, b *model.Booking, ownerID uint64, prev model.BookingStatus, at time.Time) BookingEvent {
	return BookingEvent{
		Type:           typ,
		BookingID:      b.ID,
		VenueID:        b.VenueID,
		UserID:         b.UserID,
		OwnerID:        ownerID,
		Status:         string(b.Status),
		PreviousStatus: string(prev),
		StartTime:      b.StartTime.UTC().Format(time.RFC3339),
		EndTime:        b.EndTime.UTC().Format(time.RFC3339),
		TotalAmount:    b.TotalAmount,
		OccurredAt:     at.UTC().Format(time.RFC3339),
	}
}
