package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fsdevblog/groph-rewards/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err        error
		wantKind   string
		wantStatus int
	}{
		{domain.ErrRecordNotFound, KindNotFound, http.StatusNotFound},
		{domain.ErrRewardInactive, KindInactive, http.StatusBadRequest},
		{domain.ErrRewardExpired, KindExpired, http.StatusBadRequest},
		{domain.ErrOutOfStock, KindOutOfStock, http.StatusBadRequest},
		{domain.ErrNotEnoughBalance, KindInsufficientBalance, http.StatusBadRequest},
		{domain.ErrLimitReached, KindLimitReached, http.StatusForbidden},
		{domain.ErrInvalidState, KindInvalidState, http.StatusBadRequest},
		{domain.ErrDeadlineExpired, KindDeadlineExpired, http.StatusForbidden},
		{domain.ErrRedemptionExpired, KindRedemptionExpired, http.StatusBadRequest},
		{domain.ErrConflict, KindConflict, http.StatusConflict},
		{domain.ErrUnknown, KindInternal, http.StatusInternalServerError},
		{errors.New("some driver error"), KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			kind, status, msg := ClassifyError(fmt.Errorf("service: %w", tc.err))
			assert.Equal(t, tc.wantKind, kind)
			assert.Equal(t, tc.wantStatus, status)
			if kind == KindInternal {
				assert.Equal(t, "internal server error", msg)
			} else {
				assert.Equal(t, tc.err.Error(), msg)
			}
		})
	}
}

func TestErrorsSkipsWrittenBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Errors())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(errors.New("late error")).SetType(gin.ErrorTypePrivate)
		c.String(http.StatusOK, "done")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "done", w.Body.String())
}

func TestErrorsHidesPrivateMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Errors())
	r.GET("/", func(c *gin.Context) {
		AbortWithError(c, http.StatusInternalServerError, errors.New("password=secret"), gin.ErrorTypePrivate)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"kind":"Internal","error":"internal server error"}`, w.Body.String())
}
