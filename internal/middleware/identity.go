package middleware

// identity.go keeps the authenticated identity on the echo context.  JWTAuth
// writes it, handlers and the other middleware read it.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

const ctxUserID = "user_id"

// SetIdentity stores the authenticated user on the context.
func SetIdentity(c echo.Context, userID uint64) {
    c.Set(ctxUserID, userID)
}

// UserID returns the authenticated user id, if any.
func UserID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ctxUserID).(uint64)
    return id, ok && id != 0
}

// userKey is the identity part of Redis keys: the user id or "anon".
func userKey(c echo.Context) string {
    if id, ok := UserID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "anon"
}
