package handler // handler defines http handlers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/middleware"
	"github.com/iliyamo/hall-booking/internal/model"
	"github.com/iliyamo/hall-booking/internal/service"
)

// BookingUseCase is the booking surface the HTTP layer depends on.
type BookingUseCase interface {
	Submit(ctx context.Context, req service.BookingRequest) (*model.Booking, error)
	Transition(ctx context.Context, bookingID uint64, target model.BookingStatus, actor model.Actor) (*model.BookingDetail, error)
	Get(ctx context.Context, bookingID uint64, actor model.Actor) (*model.BookingDetail, error)
	ListForOwner(ctx context.Context, ownerID uint64) ([]model.BookingDetail, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.BookingDetail, error)
	ListAll(ctx context.Context) ([]model.BookingDetail, error)
	UserStats(ctx context.Context, userID uint64) (service.UserStats, error)
	Availability(ctx context.Context, venueID uint64, from, to time.Time) ([]model.Interval, error)
}

// VenueUseCase is the venue surface the HTTP layer depends on.
type VenueUseCase interface {
	Create(ctx context.Context, actor model.Actor, in service.VenueInput) (*model.Venue, error)
	Update(ctx context.Context, actor model.Actor, id uint64, in service.VenueInput) (*model.Venue, error)
	Delete(ctx context.Context, actor model.Actor, id uint64) error
	ListMine(ctx context.Context, actor model.Actor) ([]model.Venue, error)
	Get(ctx context.Context, id uint64) (*model.Venue, error)
	List(ctx context.Context, limit, offset int) (service.Page, error)
}

// PricingUseCase quotes venue prices.
type PricingUseCase interface {
	SuggestForVenue(ctx context.Context, venueID uint64, at time.Time, durationHours float64) (service.PriceQuote, error)
}

// UserUseCase covers self-service profile edits and admin account management.
type UserUseCase interface {
	List(ctx context.Context, limit, offset int) ([]model.User, error)
	Get(ctx context.Context, id uint64) (*model.User, error)
	SetRole(ctx context.Context, actor model.Actor, id uint64, role string) (*model.User, error)
	Delete(ctx context.Context, actor model.Actor, id uint64) error
	UpdateProfile(ctx context.Context, id uint64, in service.ProfileInput) (*model.User, error)
}

var errNoIdentity = errors.New("invalid user_id in context")

// getUserID extracts the user_id set by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		if t != 0 {
			return t, nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil && n != 0 {
			return n, nil
		}
	}
	return 0, errNoIdentity
}

func getRole(c echo.Context) string {
	r, _ := c.Get(middleware.CtxRole).(string)
	return r
}

// actorFrom builds the caller identity, failing for unauthenticated requests.
func actorFrom(c echo.Context) (model.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return model.Actor{}, err
	}
	return model.Actor{UserID: uid, Role: getRole(c)}, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// withTimeout bounds handler work by the configured request timeout.
func withTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(c.Request().Context(), d)
}
