package httpserver

import (
	"net/http"
	"strconv"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/labstack/echo/v4"
)

type VaccineStockHTTP struct {
	Svc *service.VaccineStockService
}

func (h *VaccineStockHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vaccine_stock.list")

	var hospitalID uint
	if v := c.QueryParam("hospitalId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest("invalid hospitalId")
		}
		hospitalID = uint(id)
	}

	items, err := h.Svc.List(ctx, hospitalID)
	if err != nil {
		return failed(l, "list_vaccine_stock_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *VaccineStockHTTP) Set(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vaccine_stock.set")

	var req transport.VaccineStockRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	st, err := h.Svc.Set(ctx, req.HospitalID, req.VaccineID, req.Quantity)
	if err != nil {
		return failed(l, "set_vaccine_stock_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "stock updated", "stock": st})
}

func (h *VaccineStockHTTP) Adjust(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "vaccine_stock.adjust")

	var req transport.VaccineAdjustRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	st, err := h.Svc.Adjust(ctx, req.HospitalID, req.VaccineID, req.Delta)
	if err != nil {
		return failed(l, "adjust_vaccine_stock_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "stock adjusted", "stock": st})
}
