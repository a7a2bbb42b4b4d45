package middleware // package middleware contains the HTTP middleware shared by all routes

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-ticket-booking/internal/utils"
)

// JWTAuth validates a Bearer access token and stores the user id (the
// token's subject) on the context, see UserID.  Requests without a
// valid token are answered with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return unauthorized(c, "missing bearer token")
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
            id, _, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return unauthorized(c, "invalid token")
            }
            SetIdentity(c, id)
            return next(c)
        }
    }
}

func unauthorized(c echo.Context, msg string) error {
    return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "data": nil, "message": msg})
}
