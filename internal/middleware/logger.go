package middleware

import (
    "context"
    "log/slog"

    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"
)

// RequestLogger writes one structured access log line per request.
// Server errors log at error level, client errors at warn.
func RequestLogger(log *slog.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURI:       true,
        LogStatus:    true,
        LogLatency:   true,
        LogRemoteIP:  true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            level := slog.LevelInfo
            switch {
            case v.Status >= 500:
                level = slog.LevelError
            case v.Status >= 400:
                level = slog.LevelWarn
            }
            attrs := []slog.Attr{
                slog.String("method", v.Method),
                slog.String("uri", v.URI),
                slog.Int("status", v.Status),
                slog.Duration("latency", v.Latency),
                slog.String("ip", v.RemoteIP),
                slog.String("request_id", v.RequestID),
            }
            if uid, ok := UserID(c); ok {
                attrs = append(attrs, slog.Uint64("user_id", uid))
            }
            if v.Error != nil {
                attrs = append(attrs, slog.String("err", v.Error.Error()))
            }
            log.LogAttrs(context.Background(), level, "http request", attrs...)
            return nil
        },
    })
}
