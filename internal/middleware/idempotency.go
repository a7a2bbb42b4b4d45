package middleware

import (
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/cinema-ticket-booking/internal/config"
)

// HeaderIdempotencyKey is the request header clients use to make a
// mutation safe to retry.
const HeaderIdempotencyKey = "Idempotency-Key"

// Idempotency rejects a repeated Idempotency-Key (per user) within TTL
// with 409.  The key is claimed with SET NX before the handler runs and
// released again when the handler fails with a 5xx status, so a retry
// after a server error can go through.  Requests without the header are
// not checked.
func Idempotency(cfg config.IdempotencyConfig, rdb *redis.Client, log *slog.Logger) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return passThrough
    }
    methods := make(map[string]bool, len(cfg.Methods))
    for _, m := range cfg.Methods {
        methods[strings.ToUpper(m)] = true
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = 24 * time.Hour
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
            if raw == "" || !methods[c.Request().Method] {
                return next(c)
            }
            if len(raw) > 128 {
                return c.JSON(http.StatusBadRequest, echo.Map{
                    "success": false, "data": nil, "message": "Idempotency-Key is too long",
                })
            }
            ctx := c.Request().Context()
            key := strings.Join([]string{cfg.Prefix, userKey(c), raw}, ":")
            fresh, err := rdb.SetNX(ctx, key, "1", ttl).Result()
            if err != nil {
                log.Warn("idempotency check failed", slog.String("key", key), slog.Any("err", err))
                return next(c)
            }
            if !fresh {
                return c.JSON(http.StatusConflict, echo.Map{
                    "success": false, "data": nil, "message": "Duplicate request",
                })
            }

            err = next(c)
            status := c.Response().Status
            if he, ok := err.(*echo.HTTPError); ok {
                status = he.Code
            } else if err != nil {
                status = http.StatusInternalServerError
            }
            if status >= http.StatusInternalServerError {
                _ = rdb.Del(ctx, key).Err()
            }
            return err
        }
    }
}
