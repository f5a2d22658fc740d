package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const UserIDKey = "user_id"

var (
	ErrMissingToken = errors.New("not authorized, no token")
	ErrInvalidToken = errors.New("not authorized, token failed")
	ErrUnknownUser  = errors.New("not authorized, user not found")
)

// Claims is the bearer token payload. Tokens are issued elsewhere with the user id in "id".
type Claims struct {
	UserID uint `json:"id"`
	jwt.RegisteredClaims
}

// UserLookup reports whether the user behind a verified token still exists.
type UserLookup func(ctx context.Context, id uint) (bool, error)

type AuthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewAuthMiddleware verifies an HS256 bearer token and stores the user id under UserIDKey.
func NewAuthMiddleware(secret string, lookup UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := ParseToken(secret, c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return unauthorized(c, err)
			}

			if lookup != nil {
				exists, err := lookup(c.Request().Context(), userID)
				if err != nil {
					return unauthorized(c, ErrInvalidToken)
				}
				if !exists {
					return unauthorized(c, ErrUnknownUser)
				}
			}

			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// ParseToken extracts the user id from an "Authorization: Bearer <token>" header value.
func ParseToken(secret, header string) (uint, error) {
	raw, found := strings.CutPrefix(header, "Bearer ")
	raw = strings.TrimSpace(raw)
	if !found || raw == "" {
		return 0, ErrMissingToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// UserID returns the id stored by the auth middleware.
func UserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(UserIDKey).(uint)
	return id, ok && id != 0
}

func userKey(c echo.Context) (string, bool) {
	id, ok := UserID(c)
	if !ok {
		return "", false
	}
	return strconv.FormatUint(uint64(id), 10), true
}

func unauthorized(c echo.Context, err error) error {
	return c.JSON(http.StatusUnauthorized, AuthResponse{
		Success: false,
		Message: err.Error(),
	})
}
