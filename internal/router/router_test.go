package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"grifopos/internal/config"
	"grifopos/internal/model"
	"grifopos/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

var unaIsla = model.Topologia{Islas: []model.Isla{{ID: "isla-1"}}}

func rutas(r *gin.Engine) map[string]bool {
	out := map[string]bool{}
	for _, ri := range r.Routes() {
		out[ri.Method+" "+ri.Path] = true
	}
	return out
}

// Routes are registered without touching the stores, so nil clients suffice.
func TestSwaggerSoloFueraDeProduccion(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })
	cfg := &config.Config{Env: "development", JWTSecret: "dev", CORSOrigins: "*", RateLimit: 100}

	dev := router.New(cfg, nil, nil, unaIsla)
	assert.True(t, rutas(dev)["GET /swagger/*any"])
	assert.True(t, rutas(dev)["POST /v1/verificaciones/:id/guardar"])

	w := httptest.NewRecorder()
	dev.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	cfg.Env = "production"
	prod := router.New(cfg, nil, nil, unaIsla)
	assert.False(t, rutas(prod)["GET /swagger/*any"])
	assert.True(t, rutas(prod)["GET /health"])
}
