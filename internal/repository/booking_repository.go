package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/hall-booking/internal/model"
)

// BookingRepo persists bookings. Writes that must observe a consistent
// calendar run inside a transaction holding a row lock: submissions lock
// the venue row, status changes lock the booking row.
type BookingRepo struct {
	db *sqlx.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingDetailSelect = `SELECT b.id, b.venue_id, b.user_id, b.start_time, b.end_time, b.event_name, b.event_type,
       b.attendees, b.total_amount, b.status, b.remarks, b.created_at, b.updated_at,
       v.name AS venue_name, v.owner_id AS venue_owner_id
  FROM bookings b
  JOIN venues v ON v.id = b.venue_id`

// Create inserts b as long as no blocking booking of the same venue
// overlaps [b.StartTime, b.EndTime). The venue row is locked with
// SELECT ... FOR UPDATE first so concurrent submissions for one venue
// serialise while other venues proceed independently. On success the
// generated ID and timestamps are set on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var venueID uint64
	if err := tx.GetContext(ctx, &venueID, `SELECT id FROM venues WHERE id = ? FOR UPDATE`, b.VenueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrVenueNotFound
		}
		return fmt.Errorf("lock venue: %w", err)
	}

	// existing.start < end AND existing.end > start
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM bookings
	      WHERE venue_id = ? AND status IN (?) AND start_time < ? AND end_time > ?`,
		b.VenueID, model.BlockingStatuses, b.EndTime, b.StartTime)
	if err != nil {
		return err
	}
	var n int
	if err := tx.GetContext(ctx, &n, tx.Rebind(q), args...); err != nil {
		return fmt.Errorf("count overlaps: %w", err)
	}
	if n > 0 {
		return ErrConflict
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO bookings
	      (venue_id, user_id, start_time, end_time, event_name, event_type, attendees, total_amount, status, remarks, created_at, updated_at)
	      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.VenueID, b.UserID, b.StartTime, b.EndTime, b.EventName, b.EventType, b.Attendees,
		b.TotalAmount, b.Status, b.Remarks, b.CreatedAt, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	b.UpdatedAt = b.CreatedAt

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// GetByID returns the booking joined with its venue.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.BookingDetail, error) {
	var d model.BookingDetail
	err := r.db.GetContext(ctx, &d, bookingDetailSelect+` WHERE b.id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Transition locks the booking row, hands the current state to decide and
// writes the status it returns. If decide fails nothing is written and its
// error is returned unchanged. The returned detail carries the new status.
func (r *BookingRepo) Transition(ctx context.Context, id uint64, decide func(cur *model.BookingDetail) (model.BookingStatus, error)) (*model.BookingDetail, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var cur model.BookingDetail
	if err := tx.GetContext(ctx, &cur, bookingDetailSelect+` WHERE b.id = ? FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	next, err := decide(&cur)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`, next, now, id); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true

	cur.Status = next
	cur.UpdatedAt = now
	return &cur, nil
}

// ListByOwner returns bookings of every venue owned by ownerID, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	err := r.db.SelectContext(ctx, &out, bookingDetailSelect+` WHERE v.owner_id = ? ORDER BY b.created_at DESC, b.id DESC`, ownerID)
	return out, err
}

// ListByUser returns the bookings submitted by userID, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	err := r.db.SelectContext(ctx, &out, bookingDetailSelect+` WHERE b.user_id = ? ORDER BY b.created_at DESC, b.id DESC`, userID)
	return out, err
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]model.BookingDetail, error) {
	out := []model.BookingDetail{}
	err := r.db.SelectContext(ctx, &out, bookingDetailSelect+` ORDER BY b.created_at DESC, b.id DESC`)
	return out, err
}

// CountForUser returns the user's total number of bookings and the
// number of blocking bookings starting at or after now.
func (r *BookingRepo) CountForUser(ctx context.Context, userID uint64, now time.Time) (total, upcoming int, err error) {
	if err = r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM bookings WHERE user_id = ?`, userID); err != nil {
		return 0, 0, err
	}
	q, args, err := sqlx.In(`SELECT COUNT(*) FROM bookings WHERE user_id = ? AND status IN (?) AND start_time >= ?`,
		userID, model.BlockingStatuses, now)
	if err != nil {
		return 0, 0, err
	}
	if err = r.db.GetContext(ctx, &upcoming, r.db.Rebind(q), args...); err != nil {
		return 0, 0, err
	}
	return total, upcoming, nil
}

// ListBlocking returns the intervals of blocking bookings of a venue that
// intersect [from, to), ordered by start.
func (r *BookingRepo) ListBlocking(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error) {
	q, args, err := sqlx.In(`SELECT start_time, end_time FROM bookings
	      WHERE venue_id = ? AND status IN (?) AND start_time < ? AND end_time > ?
	      ORDER BY start_time`, venueID, model.BlockingStatuses, to, from)
	if err != nil {
		return nil, err
	}
	out := []model.Interval{}
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}
