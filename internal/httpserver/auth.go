package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/logging"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/transport"
	"github.com/labstack/echo/v4"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	res, err := h.Svc.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return failed(l, "register_error", err)
	}

	h.setCookie(c, res)
	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, transport.AuthResponse{
		Message:   "user registered",
		User:      transport.NewUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badRequest("invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return failed(l, "login_error", err)
	}

	h.setCookie(c, res)
	l.Info("login_success", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, transport.AuthResponse{
		Message:   "logged in",
		User:      transport.NewUserResponse(res.User),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	a, err := actor(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.Me(ctx, a.UserID)
	if err != nil {
		return failed(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewUserResponse(u))
}

func (h *AuthHTTP) setCookie(c echo.Context, res *service.AuthResult) {
	c.SetCookie(&http.Cookie{
		Name:     "accessToken",
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
