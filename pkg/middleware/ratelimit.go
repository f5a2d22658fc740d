package middleware

import (
	"net/http"
	"stockgenius/pkg/ratelimit"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// Response is the body returned by the rate limiting middlewares.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Tip     string `json:"tip,omitempty"`
}

// NewRateLimiterMiddleware limits every client IP to ratePerSecond requests with the given burst.
func NewRateLimiterMiddleware(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	config := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:  rate.Limit(ratePerSecond),
				Burst: burst,
				// state of an idle client is dropped after 3 minutes
				ExpiresIn: 3 * time.Minute,
			},
		),

		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},

		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, Response{
				Status:  http.StatusForbidden,
				Message: "Access forbidden: Rate limiter error occurred",
			})
		},

		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many requests: Rate limit exceeded. Please try again later",
			})
		},
	}

	return middleware.RateLimiterWithConfig(config)
}

// NewUserRateLimiterMiddleware applies a per-user limit. It must run after the auth middleware;
// requests without a user id are passed through.
func NewUserRateLimiterMiddleware(store *ratelimit.LimiterStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := userKey(c)
			if !ok {
				return next(c)
			}
			if !store.Allow(key) {
				return c.JSON(http.StatusTooManyRequests, Response{
					Status:  http.StatusTooManyRequests,
					Message: "Too many AI requests: Rate limit exceeded",
					Tip:     "Please wait a minute before requesting another analysis.",
				})
			}
			return next(c)
		}
	}
}
