package handler

import (
	"net/http"

	"grifopos/internal/dto"
	"grifopos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar reportes verificados
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD"
// @Param        tipo query string false "turno | dia"
// @Success      200  {array}  dto.ReporteResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/reportes [get]
func (h *ReportesHandler) Listar(c *gin.Context) {
	var filter dto.ReporteFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obtener godoc
// @Summary      Obtener un reporte
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del reporte"
// @Success      200  {object} dto.ReporteResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/reportes/{id} [get]
func (h *ReportesHandler) Obtener(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenDia godoc
// @Summary      Resumen del día
// @Description  Totales por grupo de turno y del día; suma de los balances de cada turno.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        fecha path string true "YYYY-MM-DD"
// @Success      200  {object} dto.ResumenDiaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/dias/{fecha}/resumen [get]
func (h *ReportesHandler) ResumenDia(c *gin.Context) {
	fecha, ok := paramFecha(c)
	if !ok {
		return
	}
	resp, err := h.svc.ResumenDia(c.Request.Context(), fecha)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
