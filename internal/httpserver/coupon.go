package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/labstack/echo/v4"
)

type CouponHTTP struct {
	Svc *service.CouponService
}

func (h *CouponHTTP) GenerateAndStore(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.generate")

	var req transport.GenerateCouponRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("generate_coupon_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	cp, err := h.Svc.Generate(ctx, req.ExpiresAt)
	if err != nil {
		return failed(l, "generate_coupon_error", err)
	}

	l.Info("coupon_generated", "code", cp.Code)
	return c.JSON(http.StatusCreated, map[string]any{"message": "coupon generated", "coupon": cp})
}

func (h *CouponHTTP) GetByCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "coupon.get")

	cp, err := h.Svc.GetByCode(ctx, c.Param("code"))
	if err != nil {
		return failed(l, "get_coupon_error", err)
	}
	return c.JSON(http.StatusOK, cp)
}
