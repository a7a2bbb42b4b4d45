package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/handler"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// /healthz is the liveness probe and /readyz pings the database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers the authentication routes under /api/auth.  Only
// /me requires an access token; logout takes the refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterMedia exposes stored posters.  Poster URLs built by the booking
// views point here.
func RegisterMedia(e *echo.Echo, m *handler.MediaHandler, mws ...echo.MiddlewareFunc) {
	e.GET("/api/storage/posters/:filename", m.Poster, mws...)
}
