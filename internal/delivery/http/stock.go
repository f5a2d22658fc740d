package http

import (
	"net/http"
	"stockgenius/internal/dto"
	"stockgenius/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupStocks(base *echo.Group) {
	stocks := base.Group("/stocks")
	stocks.GET("", h.listStocks)
	stocks.GET("/:symbol/live", h.getLiveStock)
	stocks.GET("/:symbol/candles", h.getCandles)
	stocks.GET("/:symbol/price", h.getPrice)
}

func (h *HttpAPIHandler) listStocks(c echo.Context) error {
	param := dto.ListStocksParam{
		Search:     c.QueryParam("search"),
		Sector:     c.QueryParam("sector"),
		Industry:   c.QueryParam("industry"),
		Pagination: dto.NewPagination(c.QueryParam("page"), c.QueryParam("limit")),
	}

	result, err := h.service.StockService.List(c.Request().Context(), param)
	if err != nil {
		return stockError(c, err, "Failed to fetch stocks")
	}

	return c.JSON(http.StatusOK, dto.StockListResponse{Success: true, StockListResult: *result})
}

func (h *HttpAPIHandler) getLiveStock(c echo.Context) error {
	data, fromCache, err := h.service.StockService.GetLive(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return stockError(c, err, "Failed to fetch live stock data")
	}

	return c.JSON(http.StatusOK, dto.LiveStockResponse{Success: true, FromCache: fromCache, LiveStockData: *data})
}

func (h *HttpAPIHandler) getCandles(c echo.Context) error {
	var query dto.CandleQuery
	if err := c.Bind(&query); err != nil {
		return badRequest(c, err)
	}
	if err := h.validator.Struct(query); err != nil {
		return stockError(c, service.ErrInvalidInterval, "")
	}

	result, fromCache, err := h.service.StockService.GetCandles(c.Request().Context(), c.Param("symbol"), query.Interval)
	if err != nil {
		return stockError(c, err, "Failed to fetch candle data")
	}

	return c.JSON(http.StatusOK, dto.CandleResponse{Success: true, FromCache: fromCache, CandleResult: *result})
}

func (h *HttpAPIHandler) getPrice(c echo.Context) error {
	result, fromCache, err := h.service.StockService.GetPrice(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return stockError(c, err, "Failed to fetch stock price")
	}

	return c.JSON(http.StatusOK, dto.PriceResponse{Success: true, FromCache: fromCache, PriceResult: *result})
}
