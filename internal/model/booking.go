package model

import (
	"fmt"
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.  It is a closed set;
// values coming from clients or the database go through ParseBookingStatus.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// BlockingStatuses lists the statuses that occupy a venue's calendar.
var BlockingStatuses = []BookingStatus{BookingPending, BookingApproved}

// ParseBookingStatus normalises s and reports whether it names a known status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case BookingPending, BookingApproved, BookingRejected, BookingCancelled, BookingCompleted:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// Blocking reports whether a booking in this status counts toward overlap conflicts.
func (s BookingStatus) Blocking() bool {
	return s == BookingPending || s == BookingApproved
}

// Terminal reports whether no further transitions leave this status.
func (s BookingStatus) Terminal() bool {
	return s == BookingRejected || s == BookingCancelled || s == BookingCompleted
}

// Booking is a reservation of a venue over the half-open interval
// [StartTime, EndTime).
//
// Fields:
//	ID          – primary key identifier.
//	VenueID     – booked venue.
//	UserID      – requester who submitted the booking.
//	StartTime   – inclusive start instant (UTC).
//	EndTime     – exclusive end instant (UTC), always after StartTime.
//	EventName   – optional event title supplied by the requester.
//	EventType   – optional event category.
//	Attendees   – optional expected head count.
//	TotalAmount – hours × venue hourly rate at submission time.
//	Status      – lifecycle state.
//	Remarks     – optional free text.
type Booking struct {
	ID          uint64        `db:"id" json:"id"`
	VenueID     uint64        `db:"venue_id" json:"venue_id"`
	UserID      uint64        `db:"user_id" json:"user_id"`
	StartTime   time.Time     `db:"start_time" json:"start_time"`
	EndTime     time.Time     `db:"end_time" json:"end_time"`
	EventName   *string       `db:"event_name" json:"event_name,omitempty"`
	EventType   *string       `db:"event_type" json:"event_type,omitempty"`
	Attendees   *int          `db:"attendees" json:"attendees,omitempty"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
	Status      BookingStatus `db:"status" json:"status"`
	Remarks     *string       `db:"remarks" json:"remarks,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// BookingDetail is a booking joined with the venue fields owners and
// renters need when listing bookings.
type BookingDetail struct {
	Booking
	VenueName    string `db:"venue_name" json:"venue_name"`
	VenueOwnerID uint64 `db:"venue_owner_id" json:"venue_owner_id"`
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `db:"start_time" json:"start"`
	End   time.Time `db:"end_time" json:"end"`
}

// Valid reports whether the interval is non-empty.
func (iv Interval) Valid() bool { return iv.End.After(iv.Start) }

// Hours returns the fractional length of the interval in hours.
func (iv Interval) Hours() float64 { return iv.End.Sub(iv.Start).Hours() }

// Overlaps reports whether two half-open intervals share any instant.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Interval returns the booked range.
func (b *Booking) Interval() Interval { return Interval{Start: b.StartTime, End: b.EndTime} }
