package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/hall-booking/internal/model"
)

// VenueRepo provides methods to create, retrieve and modify venues.
type VenueRepo struct {
	db *sqlx.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *sqlx.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

const venueColumns = `id, owner_id, name, description, location, facilities, image_url, capacity, price_per_hour, available, created_at, updated_at`

// Create inserts a new venue. OwnerID and Name must be set. After insert
// the row is read back so defaults and timestamps are populated.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	const qInsert = `INSERT INTO venues (owner_id, name, description, location, facilities, image_url, capacity, price_per_hour, available)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		v.OwnerID, v.Name, v.Description, v.Location, v.Facilities, v.ImageURL, v.Capacity, v.PricePerHour, v.Available)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	return r.db.GetContext(ctx, v, "SELECT "+venueColumns+" FROM venues WHERE id = ?", id)
}

// GetByID retrieves a venue by its ID regardless of owner. It returns
// ErrVenueNotFound when no row is found.
func (r *VenueRepo) GetByID(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := r.db.GetContext(ctx, &v, "SELECT "+venueColumns+" FROM venues WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVenueNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListByOwner returns all venues of an owner ordered by id.
func (r *VenueRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Venue, error) {
	out := []model.Venue{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+venueColumns+" FROM venues WHERE owner_id = ? ORDER BY id", ownerID)
	return out, err
}

// List returns a page of venues. When onlyAvailable is set, venues that
// do not accept bookings are skipped. The second result is the total
// row count for the same predicate.
func (r *VenueRepo) List(ctx context.Context, onlyAvailable bool, limit, offset int) ([]model.Venue, int, error) {
	where := ""
	if onlyAvailable {
		where = " WHERE available = TRUE"
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM venues"+where); err != nil {
		return nil, 0, err
	}
	out := []model.Venue{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+venueColumns+" FROM venues"+where+" ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update writes the mutable venue fields. Ownership is checked by the
// caller. Returns ErrVenueNotFound when the row does not exist.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	const q = `UPDATE venues
               SET name = ?, description = ?, location = ?, facilities = ?, image_url = ?,
                   capacity = ?, price_per_hour = ?, available = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		v.Name, v.Description, v.Location, v.Facilities, v.ImageURL, v.Capacity, v.PricePerHour, v.Available, v.ID)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when nothing changed, so confirm existence.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, v.ID); err != nil {
			return err
		}
	}
	return r.db.GetContext(ctx, v, "SELECT "+venueColumns+" FROM venues WHERE id = ?", v.ID)
}

// Delete removes a venue. A venue still referenced by bookings cannot be
// deleted and yields ErrConflict.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM venues WHERE id = ?", id)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1451 {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVenueNotFound
	}
	return nil
}
