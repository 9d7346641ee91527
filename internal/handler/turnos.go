package handler

import (
	"net/http"

	"grifopos/internal/dto"
	"grifopos/internal/middleware"
	"grifopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type TurnosHandler struct{ svc service.TurnoService }

func NewTurnosHandler(svc service.TurnoService) *TurnosHandler { return &TurnosHandler{svc: svc} }

// Abrir godoc
// @Summary      Abrir un turno
// @Description  Abre un turno en una isla; las lecturas iniciales se arrastran del turno anterior de la isla.
// @Tags         turnos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AbrirTurnoRequest true "Cuerpo"
// @Success      201  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turnos [post]
func (h *TurnosHandler) Abrir(c *gin.Context) {
	var req dto.AbrirTurnoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		responderError(c, err)
		return
	}
	if claims := middleware.GetClaims(c); claims != nil {
		log.Debug().Str("user_id", claims.Usuario()).Str("turno_id", resp.ID).Msg("turno abierto por")
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar turnos
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Param        fecha query string false "YYYY-MM-DD"
// @Param        isla_id query string false "Isla"
// @Param        estado query string false "abierto | cerrado"
// @Success      200  {array}  dto.TurnoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turnos [get]
func (h *TurnosHandler) Listar(c *gin.Context) {
	var filter dto.TurnoFilter
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
// @Summary      Obtener un turno
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Success      200  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/turnos/{id} [get]
func (h *TurnosHandler) Obtener(c *gin.Context) {
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

// Balance godoc
// @Summary      Balance del turno
// @Description  Ventas por medidor, totales por categoría, efectivo esperado y diferencia.
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Success      200  {object} dto.BalanceResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/turnos/{id}/balance [get]
func (h *TurnosHandler) Balance(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Balance(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Medidores godoc
// @Summary      Registrar lecturas finales
// @Tags         turnos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Param        body body dto.MedidoresRequest true "Cuerpo"
// @Success      200  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turnos/{id}/medidores [patch]
func (h *TurnosHandler) Medidores(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.MedidoresRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMedidores(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarItem godoc
// @Summary      Agregar un ítem al turno
// @Tags         turnos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Param        categoria path string true "pagos | creditos | promociones | descuentos | gastos | adelantos | balones"
// @Param        body body dto.ItemRequest true "Cuerpo"
// @Success      201  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turnos/{id}/items/{categoria} [post]
func (h *TurnosHandler) AgregarItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AgregarItem(c.Request.Context(), id, c.Param("categoria"), req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// EliminarItem godoc
// @Summary      Eliminar un ítem del turno
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Param        categoria path string true "pagos | creditos | promociones | descuentos | gastos | adelantos | balones"
// @Param        item_id path string true "ID del ítem"
// @Success      200  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/turnos/{id}/items/{categoria}/{item_id} [delete]
func (h *TurnosHandler) EliminarItem(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "item_id")
	if !ok {
		return
	}
	resp, err := h.svc.EliminarItem(c.Request.Context(), id, c.Param("categoria"), itemID)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Entregas godoc
// @Summary      Reemplazar entregas de efectivo
// @Tags         turnos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Param        body body dto.EntregasRequest true "Cuerpo"
// @Success      200  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/turnos/{id}/entregas [put]
func (h *TurnosHandler) Entregas(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.EntregasRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReemplazarEntregas(c.Request.Context(), id, req)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary      Cerrar el turno
// @Tags         turnos
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "ID del turno (uuid)"
// @Success      200  {object} dto.TurnoResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /v1/turnos/{id}/cerrar [post]
func (h *TurnosHandler) Cerrar(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), id)
	if err != nil {
		responderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
