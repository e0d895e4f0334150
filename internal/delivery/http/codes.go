package http

import (
	"crypto/subtle"
	"net/http"

	"forex-signals/internal/dto"

	"github.com/labstack/echo/v4"
)

const adminTokenHeader = "X-Admin-Token"

func (h *HttpAPIHandler) SetupCodes(base *echo.Group) {
	v1 := base.Group("/v1/codes")
	{
		v1.POST("", h.IssueCode, h.requireAdminToken)
	}
}

func (h *HttpAPIHandler) requireAdminToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Request().Header.Get(adminTokenHeader)
		if h.cfg.API.AdminToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(h.cfg.API.AdminToken)) != 1 {
			return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, "invalid admin token", nil))
		}
		return next(c)
	}
}

func (h *HttpAPIHandler) IssueCode(c echo.Context) error {
	req := new(dto.IssueCodeRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	record, err := h.service.AccessService.IssueCode(c.Request().Context(), req.Days)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to issue code", nil))
	}

	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "code issued", dto.IssueCodeResponse{
		Code:      record.Code,
		ValidDays: record.ValidDays,
	}))
}
