package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hall-booking/internal/handler"
	"github.com/iliyamo/hall-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication and
// do not belong to a resource. Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes. Token exchange
// lives under /v1/auth and needs no session, /v1/me needs a valid access
// token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // keeps the refresh token
	// logout accepts a refresh token in the body or a bearer token, so it
	// is not behind JWTAuth
	g.POST("/logout", a.Logout)

	e.GET("/v1/me", a.Me, middleware.JWTAuth(jwtSecret))
	e.PUT("/v1/me", u.UpdateMe, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers guest browse endpoints for venues. cache serves
// the listing and detail reads and may be nil.
func RegisterPublic(e *echo.Echo, v *handler.VenueHandler, cache *middleware.ResponseCache) {
	e.GET("/v1/venues", v.List, cache.Middleware())
	e.GET("/v1/venues/:id", v.Get, cache.Middleware())
	// availability changes with every booking, so it is never cached
	e.GET("/v1/venues/:id/availability", v.Availability)
}
