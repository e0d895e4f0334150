package http

import (
	"net/http"

	"forex-signals/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupDashboard(base *echo.Group) {
	v1 := base.Group("/v1/dashboard")
	{
		v1.GET("/summary", h.GetSummary)
		v1.GET("/latest-signal", h.GetLatestSignal)
	}
}

func (h *HttpAPIHandler) GetSummary(c echo.Context) error {
	summary, err := h.service.DashboardService.Summary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to build summary", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", summary))
}

func (h *HttpAPIHandler) GetLatestSignal(c echo.Context) error {
	signal, err := h.service.DashboardService.LatestSignal(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to load latest signal", nil))
	}
	if signal == nil {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "no signals issued yet", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", signal))
}
