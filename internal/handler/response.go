package handler

import (
    "errors"
    "log/slog"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-ticket-booking/internal/apperr"
)

// envelope is the JSON shape of every API response.
type envelope struct {
    Success bool   `json:"success"`
    Data    any    `json:"data"`
    Message string `json:"message"`
    Errors  any    `json:"errors,omitempty"`
}

func ok(c echo.Context, status int, data any, msg string) error {
    return c.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

func fail(c echo.Context, status int, msg string, errs any) error {
    return c.JSON(status, envelope{Success: false, Message: msg, Errors: errs})
}

// statusFor maps an error kind to its HTTP status.  unexpected is used for
// Unexpected, since the list endpoint answers those with 400.
func statusFor(kind apperr.Kind, unexpected int) int {
    switch kind {
    case apperr.NotFound:
        return http.StatusNotFound
    case apperr.Validation:
        return http.StatusUnprocessableEntity
    case apperr.SeatUnavailable, apperr.Immutable:
        return http.StatusBadRequest
    default:
        return unexpected
    }
}

// respondError renders err.  Causes of unexpected errors are logged and
// never sent to the client.
func respondError(c echo.Context, log *slog.Logger, err error, unexpected int) error {
    kind := apperr.KindOf(err)
    status := statusFor(kind, unexpected)
    if kind == apperr.Unexpected {
        log.ErrorContext(c.Request().Context(), "request failed",
            slog.String("method", c.Request().Method),
            slog.String("path", c.Path()),
            slog.Any("err", err))
        return fail(c, status, "Something went wrong", nil)
    }
    var ae *apperr.Error
    if !errors.As(err, &ae) {
        return fail(c, status, err.Error(), nil)
    }
    var errs any
    if len(ae.Fields) > 0 {
        errs = ae.Fields
    }
    return fail(c, status, ae.Message, errs)
}
