package model

import "time"

// Venue is a bookable hall listed by its owner.  Bookings reference a
// venue but never own it.
//
// Fields:
//	ID           – primary key identifier.
//	OwnerID      – user ID of the hall owner.
//	Name         – display name.
//	Description  – optional description.
//	Location     – optional free-form address.
//	Facilities   – optional comma separated list of amenities.
//	Capacity     – head count (nil when unknown).
//	PricePerHour – hourly rate (nil when the owner has not set one).
//	Available    – whether the venue appears in public listings.
type Venue struct {
	ID           uint64    `db:"id" json:"id"`
	OwnerID      uint64    `db:"owner_id" json:"owner_id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	Location     *string   `db:"location" json:"location,omitempty"`
	Facilities   *string   `db:"facilities" json:"facilities,omitempty"`
	ImageURL     *string   `db:"image_url" json:"image_url,omitempty"`
	Capacity     *int      `db:"capacity" json:"capacity,omitempty"`
	PricePerHour *float64  `db:"price_per_hour" json:"price_per_hour,omitempty"`
	Available    bool      `db:"available" json:"available"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Rate returns the hourly rate, treating an unset rate as zero.
func (v *Venue) Rate() float64 {
	if v.PricePerHour == nil {
		return 0
	}
	return *v.PricePerHour
}

// CapacityOr returns the capacity or def when it is unknown.
func (v *Venue) CapacityOr(def int) int {
	if v.Capacity == nil {
		return def
	}
	return *v.Capacity
}
