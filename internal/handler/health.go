package handler // package handler contains the HTTP handlers

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is anything that can report whether a dependency is reachable.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health is a liveness probe for load balancers.  It returns a plain
// "ok" with 200 as long as the process serves HTTP.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready reports 503 until the database answers a ping.
func Ready(db Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            return fail(c, http.StatusServiceUnavailable, "database unavailable", nil)
        }
        return ok(c, http.StatusOK, echo.Map{"database": "up"}, "ready")
    }
}
