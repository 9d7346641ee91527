package handler

import (
	"net/http"

	"grifopos/internal/dto"
	"grifopos/internal/model"
	"grifopos/internal/repository"

	"github.com/gin-gonic/gin"
)

// CatalogoHandler exposes the static station data: island layout and prices.
type CatalogoHandler struct {
	topologia model.Topologia
	precios   repository.PrecioRepository
}

func NewCatalogoHandler(topologia model.Topologia, precios repository.PrecioRepository) *CatalogoHandler {
	return &CatalogoHandler{topologia: topologia, precios: precios}
}

// Islas handles GET /v1/islas.
func (h *CatalogoHandler) Islas(c *gin.Context) {
	c.JSON(http.StatusOK, h.topologia.Islas)
}

// Precios handles GET /v1/precios.
func (h *CatalogoHandler) Precios(c *gin.Context) {
	precios, err := h.precios.List(c.Request.Context())
	if err != nil {
		responderError(c, err)
		return
	}
	out := make([]dto.PrecioResponse, 0, len(precios))
	for _, p := range precios {
		out = append(out, dto.PrecioResponse{Producto: p.Producto, Precio: dto.Monto(p.Valor)})
	}
	c.JSON(http.StatusOK, out)
}
