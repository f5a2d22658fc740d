package http

import (
	"errors"
	"net/http"
	"stockgenius/internal/dto"
	"stockgenius/internal/service"
	"stockgenius/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupWatchlist(base *echo.Group) {
	watchlist := base.Group("/watchlist", h.protected()...)
	watchlist.GET("", h.getWatchlist)
	watchlist.POST("/toggle", h.toggleWatchlist)
}

func (h *HttpAPIHandler) getWatchlist(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, middleware.AuthResponse{Success: false, Message: middleware.ErrMissingToken.Error()})
	}

	items, err := h.service.WatchlistService.Get(c.Request().Context(), userID)
	if err != nil {
		return watchlistError(c, err)
	}

	return c.JSON(http.StatusOK, dto.WatchlistResponse{Success: true, Watchlist: items})
}

func (h *HttpAPIHandler) toggleWatchlist(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, middleware.AuthResponse{Success: false, Message: middleware.ErrMissingToken.Error()})
	}

	req := new(dto.ToggleWatchlistRequest)
	if err := c.Bind(req); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err)
	}

	items, added, err := h.service.WatchlistService.Toggle(c.Request().Context(), userID, req.Symbol, req.Name)
	if err != nil {
		return watchlistError(c, err)
	}

	message := "Removed from watchlist"
	if added {
		message = "Added to watchlist"
	}
	return c.JSON(http.StatusOK, dto.WatchlistResponse{Success: true, Message: message, Watchlist: items})
}

func watchlistError(c echo.Context, err error) error {
	if errors.Is(err, service.ErrUserNotFound) {
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
	}
	return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update watchlist", Details: err.Error()})
}
