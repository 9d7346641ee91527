package handler

import (
	"net/http"
	"strconv"

	"grifopos/internal/apierror"
	"grifopos/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// AdminHandler lets an administrator inspect and replay dead-lettered jobs.
type AdminHandler struct{ rdb *redis.Client }

func NewAdminHandler(rdb *redis.Client) *AdminHandler { return &AdminHandler{rdb: rdb} }

// ListarDLQ handles GET /v1/admin/dlq?limit=.
func (h *AdminHandler) ListarDLQ(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, apierror.New("limit debe estar entre 1 y 500").Con("query_invalida"))
		return
	}
	entries, err := worker.ListarDLQ(c.Request.Context(), h.rdb, worker.QueueBalance, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ReencolarDLQ handles POST /v1/admin/dlq/reencolar.
func (h *AdminHandler) ReencolarDLQ(c *gin.Context) {
	n, err := worker.ReencolarDLQ(c.Request.Context(), h.rdb, worker.QueueBalance)
	if err != nil {
		_ = c.Error(err)
		return
	}
	log.Info().Int("jobs", n).Msg("dlq reencolada")
	c.JSON(http.StatusOK, gin.H{"reencolados": n})
}
