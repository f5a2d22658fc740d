package http

import (
	"errors"
	"net/http"
	"stockgenius/internal/dto"
	"stockgenius/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupAI(base *echo.Group) {
	ai := base.Group("/ai")
	ai.GET("/suggest/:symbol", h.suggest, h.protected(h.aiLimiter)...)
}

func (h *HttpAPIHandler) suggest(c echo.Context) error {
	resp, err := h.service.SuggestionService.Suggest(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		if errors.Is(err, service.ErrNoData) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   msgSuggestionFailed,
				Details: err.Error(),
			})
		}
		return c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   msgSuggestionFailed,
			Details: err.Error(),
			Tip:     tipHighLoad,
		})
	}

	return c.JSON(http.StatusOK, resp)
}
