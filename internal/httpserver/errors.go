package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	authmw "github.com/Skotchmaster/shopcore/internal/middleware/auth"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/labstack/echo/v4"
)

// toHTTP maps service errors onto status codes. Echo errors pass through.
func toHTTP(err error) *echo.HTTPError {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}

	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrCouponInvalid):
		code = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, service.ErrUnauthorized):
		code = http.StatusUnauthorized
	}

	msg := "internal server error"
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	return echo.NewHTTPError(code, msg).SetInternal(err)
}

// ErrorHandler renders every error as {"message": ..., "error": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	he := toHTTP(err)
	detail := http.StatusText(he.Code)
	if he.Internal != nil {
		detail = he.Internal.Error()
	}
	body := map[string]string{
		"message": fmt.Sprint(he.Message),
		"error":   detail,
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(he.Code)
	} else {
		err = c.JSON(he.Code, body)
	}
	if err != nil {
		slog.Default().Error("error_response_failed", "error", err)
	}
}

func failed(l *slog.Logger, event string, err error) error {
	he := toHTTP(err)
	if he.Code >= http.StatusInternalServerError {
		l.Error(event, "status", he.Code, "error", err)
	} else {
		l.Warn(event, "status", he.Code, "error", err)
	}
	return he
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

func parseID(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, badRequest("invalid " + name)
	}
	return uint(v), nil
}

func actor(c echo.Context) (service.Actor, error) {
	id, err := authmw.UserID(c)
	if err != nil {
		return service.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return service.Actor{UserID: id, Admin: authmw.IsAdmin(c)}, nil
}
