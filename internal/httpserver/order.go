package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/internal/util"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	a, err := actor(c)
	if err != nil {
		return err
	}
	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.List(ctx, a.UserID, page, size)
	if err != nil {
		return failed(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, size, total)})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	o, err := h.Svc.Get(ctx, a, id)
	if err != nil {
		return failed(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) Pay(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.pay")

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	var req transport.PayRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	res, err := h.Svc.Pay(ctx, a, id, req.CouponCode)
	if err != nil {
		return failed(l, "pay_error", err)
	}

	l.Info("pay_success", "order_id", id, "saved", res.Saved)
	body := map[string]any{"message": "payment successful", "order": res.Order, "saved": res.Saved}
	if res.Coupon != nil {
		body["coupon"] = res.Coupon
	}
	return c.JSON(http.StatusOK, body)
}

func (h *OrderHTTP) Ship(c echo.Context) error {
	return h.transition(c, "order.ship", "order shipped", h.Svc.Ship)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	return h.transition(c, "order.cancel", "order cancelled", h.Svc.Cancel)
}

func (h *OrderHTTP) Reopen(c echo.Context) error {
	return h.transition(c, "order.reopen", "order reopened", h.Svc.Reopen)
}

func (h *OrderHTTP) Deliver(c echo.Context) error {
	return h.transition(c, "order.deliver", "order delivered", h.Svc.Deliver)
}

type transitionFunc func(ctx context.Context, a service.Actor, id uint) (*models.Order, error)

func (h *OrderHTTP) transition(c echo.Context, name, msg string, fn transitionFunc) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	o, err := fn(ctx, a, id)
	if err != nil {
		return failed(l, "transition_error", err)
	}

	l.Info("transition_success", "order_id", o.ID, "order_status", o.Status)
	return c.JSON(http.StatusOK, map[string]any{"message": msg, "order": o})
}

func (h *OrderHTTP) Review(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.review")

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	rev, err := h.Svc.Review(ctx, a, id, req.Rating, req.Comment)
	if err != nil {
		return failed(l, "review_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "review saved", "review": rev})
}

func (h *OrderHTTP) ReorderToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.reorder")

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	var req transport.ReorderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	res, err := h.Svc.ReorderToCart(ctx, a, id, req.MergeBehavior)
	if err != nil {
		return failed(l, "reorder_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "items added to cart", "cart": res.Items, "skipped": res.Skipped})
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete")

	a, id, err := orderTarget(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, a, id); err != nil {
		return failed(l, "delete_order_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "order deleted"})
}

func orderTarget(c echo.Context) (service.Actor, uint, error) {
	a, err := actor(c)
	if err != nil {
		return a, 0, err
	}
	id, err := parseID(c, "orderId")
	return a, id, err
}
