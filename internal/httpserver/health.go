package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/db"
	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type HealthHTTP struct {
	DB *gorm.DB
}

func (h *HealthHTTP) Live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *HealthHTTP) Ready(c echo.Context) error {
	ctx := c.Request().Context()
	if err := db.Ping(ctx, h.DB); err != nil {
		logging.FromContext(ctx).Error("ready_check_failed", "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
	}
	return c.NoContent(http.StatusOK)
}
