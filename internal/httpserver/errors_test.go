package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Skotchmaster/shopcore/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("bad: %w", service.ErrValidation), http.StatusBadRequest},
		{service.ErrConflict, http.StatusBadRequest},
		{service.ErrCouponInvalid, http.StatusBadRequest},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrCodeExhausted, http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusTeapot, "tea"), http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, toHTTP(tt.err).Code)
		})
	}
}

func TestErrorHandlerBody(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(errors.New("db gone"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal server error","error":"db gone"}`, rec.Body.String())
}
