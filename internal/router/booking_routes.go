package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-ticket-booking/internal/handler"
	"github.com/iliyamo/cinema-ticket-booking/internal/middleware"
)

// BookingMiddleware groups the optional Redis backed middleware of the
// booking routes.  Nil entries are skipped.
type BookingMiddleware struct {
	RateLimit   echo.MiddlewareFunc
	Idempotency echo.MiddlewareFunc
}

// RegisterBooking registers the booking endpoints under /api/booking.  All
// routes require a valid JWT.  Static segments are registered before the
// :scheduleId catch-all so /list and /detail are never taken as ids.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, mw BookingMiddleware) {
	g := e.Group("/api/booking", middleware.JWTAuth(jwtSecret))
	if mw.RateLimit != nil {
		g.Use(mw.RateLimit)
	}

	g.GET("/list", h.List)
	g.GET("/konfirmasi/:scheduleId", h.Confirmation)
	g.GET("/detail/:id", h.Detail)
	g.GET("/:scheduleId", h.Show)

	var store []echo.MiddlewareFunc
	if mw.Idempotency != nil {
		store = append(store, mw.Idempotency)
	}
	g.POST("", h.Store, store...)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Destroy)
}
