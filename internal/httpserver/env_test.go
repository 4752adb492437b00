package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/Skotchmaster/shopcore/internal/repo"
	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/Skotchmaster/shopcore/internal/socket"
	"github.com/Skotchmaster/shopcore/internal/testutil"
	"github.com/Skotchmaster/shopcore/internal/tokens"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	E       *echo.Echo
	Repo    *repo.GormRepo
	Secret  []byte
	Coupons *service.CouponService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb := testutil.InitTestDB(t)
	r := repo.New(gdb)
	secret := []byte("handler-test-secret")
	hub := socket.NewHub(nil)
	t.Cleanup(hub.Close)

	notes := &service.NotificationService{Repo: r, Hub: hub}
	coupons := &service.CouponService{Repo: r, NewDiscount: func() float64 { return 10 }}

	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	Register(e, &Deps{
		JWTSecret:     secret,
		Health:        &HealthHTTP{DB: gdb},
		Auth:          &AuthHTTP{Svc: &service.AuthService{Repo: r, Secret: secret, TTL: time.Hour}},
		Products:      &ProductHTTP{Svc: &service.ProductService{Repo: r}},
		Cart:          &CartHTTP{Svc: &service.CartService{Repo: r, Notifier: notes}},
		Orders:        &OrderHTTP{Svc: &service.OrderService{Repo: r, Notifier: notes}},
		Coupons:       &CouponHTTP{Svc: coupons},
		Notifications: &NotificationHTTP{Svc: notes},
		VaccineStock:  &VaccineStockHTTP{Svc: &service.VaccineStockService{Repo: r}},
		Socket:        &SocketHTTP{Hub: hub},
	})

	return &testEnv{E: e, Repo: r, Secret: secret, Coupons: coupons}
}

// user stores a user with the given role and returns it with a signed token.
func (env *testEnv) user(t *testing.T, name, role string) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))
	tok, _, err := tokens.SignAccessToken(u.ID, role, env.Secret, time.Hour)
	require.NoError(t, err)
	return u, tok
}

func (env *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	require.Equal(t, code, rec.Code, rec.Body.String())
}

