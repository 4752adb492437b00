package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc *service.CartService
}

// cartOwner resolves the :userId path parameter. Only admins may act on
// someone else's cart.
func cartOwner(c echo.Context) (uint, error) {
	a, err := actor(c)
	if err != nil {
		return 0, err
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return 0, err
	}
	if userID != a.UserID && !a.Admin {
		return 0, echo.NewHTTPError(http.StatusForbidden, "not allowed to access this cart")
	}
	return userID, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	cart, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return failed(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	a, err := actor(c)
	if err != nil {
		return err
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty <= 0 {
		return badRequest("quantity must be greater than zero")
	}

	item, err := h.Svc.Add(ctx, a.UserID, req.ProductID, uint(qty))
	if err != nil {
		return failed(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "product_id", item.ProductID)
	return c.JSON(http.StatusOK, map[string]any{"message": "item added to cart", "cartItem": item})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}
	var req transport.QuantityRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if req.Quantity <= 0 {
		return badRequest("quantity must be greater than zero")
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, productID, uint(req.Quantity))
	if err != nil {
		return failed(l, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "cart item updated", "cartItem": item})
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := cartOwner(c)
	if err != nil {
		return err
	}
	productID, err := parseID(c, "productId")
	if err != nil {
		return err
	}
	if err := h.Svc.Remove(ctx, userID, productID); err != nil {
		return failed(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	a, err := actor(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Clear(ctx, a.UserID); err != nil {
		return failed(l, "clear_cart_error", err)
	}

	l.Info("cart successfully cleared")
	return c.JSON(http.StatusOK, map[string]string{"message": "cart cleared"})
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	a, err := actor(c)
	if err != nil {
		return err
	}
	order, err := h.Svc.Checkout(ctx, a.UserID)
	if err != nil {
		return failed(l, "checkout_error", err)
	}

	l.Info("checkout_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, map[string]any{"message": "order placed", "order": order})
}
