// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to
// distinguish between different failure scenarios and wrap them with its
// own domain errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrVenueNotFound is returned when a venue lookup finds no row.
var ErrVenueNotFound = errors.New("venue not found")

// ErrBookingNotFound is returned when a booking lookup finds no row.
var ErrBookingNotFound = errors.New("booking not found")

// ErrUserNotFound is returned when a user lookup finds no row.
var ErrUserNotFound = errors.New("user not found")

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state, such as a booking overlapping an existing
// blocking booking of the same venue. Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate entry error (1062).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
