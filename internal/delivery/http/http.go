package http

import (
	"errors"
	"net/http"
	"stockgenius/internal/dto"
	"stockgenius/internal/service"
	"strings"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const (
	msgSuggestionFailed = "Failed to generate AI suggestion"
	tipHighLoad         = "Service is experiencing high load. Please try again in a few minutes."
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
	auth      echo.MiddlewareFunc
	aiLimiter echo.MiddlewareFunc
}

// NewHttpAPIHandler builds the REST handler. auth guards the user routes and aiLimiter
// additionally guards the suggestion route; either may be nil in tests.
func NewHttpAPIHandler(echo *echo.Echo, validator *goValidator.Validate, service *service.Service, auth, aiLimiter echo.MiddlewareFunc) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      echo,
		validator: validator,
		service:   service,
		auth:      auth,
		aiLimiter: aiLimiter,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.GET("/", h.health)

	base := h.echo.Group("/api")
	h.SetupStocks(base)
	h.SetupAI(base)
	h.SetupWatchlist(base)
}

func (h *HttpAPIHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "StockGenius API is running"})
}

func (h *HttpAPIHandler) protected(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	mws := make([]echo.MiddlewareFunc, 0, len(extra)+1)
	if h.auth != nil {
		mws = append(mws, h.auth)
	}
	for _, mw := range extra {
		if mw != nil {
			mws = append(mws, mw)
		}
	}
	return mws
}

// stockError maps stock service errors; anything unrecognised is a 500.
func stockError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrInvalidInterval):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid interval",
			Details: "Supported intervals: " + strings.Join(dto.SupportedCandleIntervals(), ", "),
		})
	case errors.Is(err, service.ErrSymbolNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Stock not found", Details: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: msg, Details: err.Error()})
	}
}

func badRequest(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request", Details: err.Error()})
}
