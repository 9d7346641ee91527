package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"grifopos/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func health(h *handler.HealthHandler) (int, map[string]any) {
	r := gin.New()
	r.GET("/health", h.Get)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestHealth(t *testing.T) {
	bien := handler.Chequeo{Nombre: "postgres", Probar: func(context.Context) error { return nil }}
	mal := handler.Chequeo{Nombre: "redis", Probar: func(context.Context) error { return errors.New("dial tcp 10.0.0.3:6379") }}
	dlq := func(context.Context) (int64, error) { return 2, nil }

	code, body := health(handler.NewHealthHandler(3, dlq, bien))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])
	assert.EqualValues(t, 3, body["islas"])
	assert.EqualValues(t, 2, body["dlq_balance"])

	code, body = health(handler.NewHealthHandler(3, nil, bien, mal))
	require.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, map[string]any{"postgres": "ok", "redis": "error"}, body["servicios"])
	assert.NotContains(t, body, "dlq_balance")
}
