package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/internal/util"
	"github.com/labstack/echo/v4"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(ctx, id)
	if err != nil {
		return failed(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.List(ctx, page, size)
	if err != nil {
		return failed(l, "list_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, size, total)})
}

func (h *ProductHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.Search(ctx, c.QueryParam("q"), page, size)
	if err != nil {
		return failed(l, "search_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, size, total)})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	p := &models.Product{Name: req.Name, Description: req.Description, Category: req.Category, Price: req.Price}
	if err := h.Svc.Create(ctx, p); err != nil {
		return failed(l, "create_product_error", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, map[string]any{"message": "product created", "product": p})
}

func (h *ProductHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var patch service.ProductPatch
	if err := c.Bind(&patch); err != nil {
		l.Warn("patch_product_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	p, err := h.Svc.Update(ctx, id, patch)
	if err != nil {
		return failed(l, "patch_product_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "product updated", "product": p})
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return failed(l, "delete_product_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) AddReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.review")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req transport.ReviewRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}

	rev, avg, err := h.Svc.AddReview(ctx, id, a.UserID, req.Rating, req.Comment)
	if err != nil {
		return failed(l, "add_review_error", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "review added", "review": rev, "rating": avg})
}

func (h *ProductHTTP) ListReviews(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.reviews")

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.ListReviews(ctx, id, page, size)
	if err != nil {
		return failed(l, "list_reviews_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, size, total)})
}
