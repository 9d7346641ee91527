package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Chequeo is one dependency checked by /health.
type Chequeo struct {
	Nombre string
	Probar func(ctx context.Context) error
}

func ChequeoPostgres(db *gorm.DB) Chequeo {
	return Chequeo{Nombre: "postgres", Probar: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func ChequeoRedis(rdb *redis.Client) Chequeo {
	return Chequeo{Nombre: "redis", Probar: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

type HealthHandler struct {
	chequeos []Chequeo
	islas    int
	// pending failed balance jobs; nil disables the field
	dlq func(ctx context.Context) (int64, error)
}

func NewHealthHandler(islas int, dlq func(ctx context.Context) (int64, error), chequeos ...Chequeo) *HealthHandler {
	return &HealthHandler{chequeos: chequeos, islas: islas, dlq: dlq}
}

// Get handles GET /health. Failures are reported per dependency by name only.
func (h *HealthHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	ok := true
	servicios := make(map[string]string, len(h.chequeos))
	for _, ch := range h.chequeos {
		if err := ch.Probar(ctx); err != nil {
			servicios[ch.Nombre] = "error"
			ok = false
			continue
		}
		servicios[ch.Nombre] = "ok"
	}

	body := gin.H{"ok": ok, "servicios": servicios, "islas": h.islas}
	if h.dlq != nil {
		if n, err := h.dlq(ctx); err == nil {
			body["dlq_balance"] = n
		}
	}

	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}
