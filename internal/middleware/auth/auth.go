package auth

import (
	"errors"
	"net/http"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/tokens"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const (
	ctxToken  = "token"
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// RequireAuth accepts a bearer header, the accessToken cookie or a token query
// parameter, and stores user_id and role in the echo context.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		ContextKey:    ctxToken,
		TokenLookup:   "header:Authorization:Bearer ,cookie:accessToken,query:token",
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return new(tokens.AccessClaims) },
		SuccessHandler: func(c echo.Context) {
			tok, ok := c.Get(ctxToken).(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := tok.Claims.(*tokens.AccessClaims)
			if !ok {
				return
			}
			if id, err := claims.UserID(); err == nil {
				SetIdentity(c, id, claims.Role)
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or missing token").SetInternal(err)
		},
	})
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := UserID(c); err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		if !IsAdmin(c) {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func SetIdentity(c echo.Context, userID uint, role string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(ctxUserID).(uint)
	if !ok || id == 0 {
		return 0, errors.New("unauthorized")
	}
	return id, nil
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(ctxRole).(string)
	return role == models.RoleAdmin
}
