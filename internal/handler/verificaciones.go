package handler

import (
	"net/http"

	"grifopos/internal/dto"
	"grifopos/internal/service"

	"github.com/gin-gonic/gin"
)

// VerificacionesHandler serves the auditor's working sessions. Every mutation
// answers with the full session so the client can redraw running totals.
type VerificacionesHandler struct{ svc service.VerificacionService }

func NewVerificacionesHandler(svc service.VerificacionService) *VerificacionesHandler {
	return &VerificacionesHandler{svc: svc}
}

// IniciarTurno godoc
// @Summary      Iniciar verificación de un turno
// @Tags         verificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        turno_id path string true "ID del turno cerrado"
// @Success      201  {object} dto.SesionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/verificaciones/turnos/{turno_id} [post]
func (h *VerificacionesHandler) IniciarTurno(c *gin.Context) {
	turnoID, ok := paramUUID(c, "turno_id")
	if !ok {
		return
	}
	resp, err := h.svc.IniciarTurno(c.Request.Context(), turnoID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// IniciarDia godoc
// @Summary      Iniciar verificación del día
// @Tags         verificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        fecha path string true "YYYY-MM-DD"
// @Success      201  {object} dto.SesionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/verificaciones/dias/{fecha} [post]
func (h *VerificacionesHandler) IniciarDia(c *gin.Context) {
	fecha, ok := paramFecha(c)
	if !ok {
		return
	}
	resp, err := h.svc.IniciarDia(c.Request.Context(), fecha)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *VerificacionesHandler) Obtener(c *gin.Context) {
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

// Alternar godoc
// @Summary      Alternar estado de un ítem
// @Description  pendiente → confirmado → rechazado → pendiente
// @Tags         verificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesión de verificación"
// @Param        item_id path string true "ID del ítem"
// @Success      200  {object} dto.ToggleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/verificaciones/{id}/items/{item_id}/alternar [post]
func (h *VerificacionesHandler) Alternar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.Alternar(c.Request.Context(), id, itemID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerificarTodo godoc
// @Summary      Confirmar todos los ítems de una categoría
// @Tags         verificaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesión de verificación"
// @Param        body body dto.VerificarTodoRequest true "Cuerpo"
// @Success      200  {object} dto.VerificarTodoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/verificaciones/{id}/verificar-todo [post]
func (h *VerificacionesHandler) VerificarTodo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.VerificarTodoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.VerificarTodo(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Corregir godoc
// @Summary      Corregir un ítem
// @Tags         verificaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesión de verificación"
// @Param        item_id path string true "ID del ítem"
// @Param        body body dto.CorregirItemRequest true "Cuerpo"
// @Success      200  {object} dto.SesionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/verificaciones/{id}/items/{item_id} [patch]
func (h *VerificacionesHandler) Corregir(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	var req dto.CorregirItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.Corregir(c.Request.Context(), id, itemID, req))
}

func (h *VerificacionesHandler) EditarMedidor(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarMedidorRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.EditarMedidor(c.Request.Context(), id, req))
}

func (h *VerificacionesHandler) Gastos(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarGastosRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.ReemplazarGastos(c.Request.Context(), id, req))
}

func (h *VerificacionesHandler) Entregas(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EditarEntregasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.ReemplazarEntregas(c.Request.Context(), id, req))
}

func (h *VerificacionesHandler) Efectivo(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EfectivoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.RegistrarEfectivo(c.Request.Context(), id, req))
}

func (h *VerificacionesHandler) Notas(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.NotasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.responder(c)(h.svc.ActualizarNotas(c.Request.Context(), id, req))
}

// responder writes a session mutation result.
func (h *VerificacionesHandler) responder(c *gin.Context) func(*dto.SesionResponse, error) {
	return func(resp *dto.SesionResponse, err error) {
		if err != nil {
			responderError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// Guardar godoc
// @Summary      Guardar la verificación
// @Description  Escribe las correcciones en los turnos y el reporte verificado en una sola transacción.
// @Tags         verificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesión de verificación"
// @Success      200  {object} dto.ReporteResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/verificaciones/{id}/guardar [post]
func (h *VerificacionesHandler) Guardar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Guardar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Descartar godoc
// @Summary      Descartar la sesión
// @Tags         verificaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID de la sesión de verificación"
// @Success      204
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/verificaciones/{id} [delete]
func (h *VerificacionesHandler) Descartar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Descartar(c.Request.Context(), id); err != nil {
		responderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
