package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/handler"
	"github.com/iliyamo/hall-booking/internal/middleware"
	"github.com/iliyamo/hall-booking/internal/model"
)

// RegisterUser registers endpoints open to any authenticated role. Access
// to individual bookings is decided by the booking service.
func RegisterUser(e *echo.Echo, b *handler.BookingHandler, p *handler.PricingHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	g.POST("/bookings", b.Create)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Cancel)
	g.GET("/my-bookings", b.MyBookings)
	g.GET("/my-bookings/stats", b.MyStats)

	g.GET("/venues/:id/price-suggestion", p.Suggest)
}

// RegisterOwner registers HALL_OWNER endpoints under /v1/owner. Admins may
// manage any venue through the same CRUD routes. Successful venue writes
// invalidate the public venue cache, which may be nil.
func RegisterOwner(e *echo.Echo, v *handler.VenueHandler, b *handler.BookingHandler, cache *middleware.ResponseCache, jwtSecret string) {
	g := e.Group("/v1/owner", middleware.JWTAuth(jwtSecret))

	crud := middleware.RequireRole(model.RoleHallOwner, model.RoleAdmin)
	flush := cache.InvalidateOnWrite()
	g.POST("/venues", v.Create, crud, flush)
	g.PUT("/venues/:id", v.Update, crud, flush)
	g.PATCH("/venues/:id", v.Update, crud, flush)
	g.DELETE("/venues/:id", v.Delete, crud, flush)

	owner := middleware.RequireRole(model.RoleHallOwner)
	g.GET("/venues", v.ListMine, owner)
	g.GET("/bookings", b.OwnerBookings, owner)
	g.PUT("/bookings/:id/status", b.UpdateStatus, owner)
	g.PUT("/bookings/:id/approve", b.Approve, owner)
	g.PUT("/bookings/:id/reject", b.Reject, owner)
	g.PUT("/bookings/:id/complete", b.Complete, owner)
}

// RegisterAdmin registers ADMIN-only endpoints under /v1/admin.
func RegisterAdmin(e *echo.Echo, b *handler.BookingHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/bookings", b.AllBookings)
	g.PUT("/bookings/:id/status", b.UpdateStatus)

	g.GET("/users", u.List)
	g.GET("/users/:id", u.Get)
	g.PUT("/users/:id/role", u.SetRole)
	g.DELETE("/users/:id", u.Delete)
}
