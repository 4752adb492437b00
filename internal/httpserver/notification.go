package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/Skotchmaster/shopcore/internal/util"
	"github.com/labstack/echo/v4"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
}

func (h *NotificationHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	a, err := actor(c)
	if err != nil {
		return err
	}
	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.List(ctx, a.UserID, page, size)
	if err != nil {
		return failed(l, "list_notifications_error", err)
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Data: items, Meta: util.Meta(page, size, total)})
}

func (h *NotificationHTTP) UnreadCount(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.unread")

	a, err := actor(c)
	if err != nil {
		return err
	}
	n, err := h.Svc.UnreadCount(ctx, a.UserID)
	if err != nil {
		return failed(l, "unread_count_error", err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.read")

	a, err := actor(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.Svc.MarkRead(ctx, a.UserID, id)
	if err != nil {
		return failed(l, "mark_read_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "notification marked as read", "notification": n})
}

func (h *NotificationHTTP) MarkAllRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.read_all")

	a, err := actor(c)
	if err != nil {
		return err
	}
	changed, err := h.Svc.MarkAllRead(ctx, a.UserID)
	if err != nil {
		return failed(l, "mark_all_read_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "all notifications marked as read", "updated": changed})
}

func (h *NotificationHTTP) DeleteAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.delete")

	a, err := actor(c)
	if err != nil {
		return err
	}
	deleted, err := h.Svc.DeleteAll(ctx, a.UserID)
	if err != nil {
		return failed(l, "delete_notifications_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "notifications deleted", "deleted": deleted})
}

func (h *NotificationHTTP) Broadcast(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.broadcast")

	var req transport.BroadcastRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	n, err := h.Svc.Broadcast(ctx, req.Message, req.Type)
	if err != nil {
		return failed(l, "broadcast_error", err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "notification broadcast", "notification": n})
}
