package dto

import (
	"grifopos/internal/model"
	"grifopos/internal/verificacion"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type VerificarTodoRequest struct {
	Categoria string `json:"categoria" validate:"required,oneof=pagos creditos promociones descuentos"`
	// TurnoIdx limits the action to one shift of a day session
	TurnoIdx *int `json:"turno_idx" validate:"omitempty,min=0"`
}

// CorregirItemRequest overwrites the given fields of one item; omitted fields
// keep their value.
type CorregirItemRequest struct {
	Metodo         *string `json:"metodo"          validate:"omitempty,oneof=tarjeta yape plin transferencia otro"`
	Referencia     *string `json:"referencia"      validate:"omitempty,max=100"`
	Factura        *string `json:"factura"         validate:"omitempty,max=50"`
	Monto          *string `json:"monto"`
	Producto       *string `json:"producto"`
	Cliente        *string `json:"cliente"         validate:"omitempty,max=120"`
	Galones        *string `json:"galones"`
	PrecioEspecial *string `json:"precio_especial"`
}

type EditarMedidorRequest struct {
	TurnoIdx int    `json:"turno_idx" validate:"min=0"`
	Clave    string `json:"clave"     validate:"required"`
	// Fin empty clears the reading
	Fin string `json:"fin"`
}

type GastoRequest struct {
	ID      string `json:"id"      validate:"omitempty,uuid"`
	Detalle string `json:"detalle" validate:"max=200"`
	Monto   string `json:"monto"`
}

type EditarGastosRequest struct {
	TurnoIdx int            `json:"turno_idx" validate:"min=0"`
	Gastos   []GastoRequest `json:"gastos"    validate:"dive"`
}

type EditarEntregasRequest struct {
	TurnoIdx int      `json:"turno_idx" validate:"min=0"`
	Entregas []string `json:"entregas"  validate:"max=200"`
}

type EfectivoRequest struct {
	// Grupo is the shift name; ignored on single-shift sessions
	Grupo string `json:"grupo"`
	Monto string `json:"monto" validate:"required"`
}

type NotasRequest struct {
	Notas string `json:"notas" validate:"max=2000"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionTurnoResponse struct {
	Idx         int               `json:"idx"`
	TurnoID     string            `json:"turno_id"`
	Trabajador  string            `json:"trabajador"`
	IslaID      string            `json:"isla_id"`
	NombreTurno string            `json:"nombre_turno"`
	Corregido   bool              `json:"corregido"`
	Medidores   []MedidorResponse `json:"medidores"`
	Gastos      []model.Gasto     `json:"gastos"`
	Entregas    []string          `json:"entregas"`
	Balance     BalanceResponse   `json:"balance"`
}

type SesionResponse struct {
	ID        string                     `json:"id"`
	Tipo      string                     `json:"tipo"`
	Fecha     string                     `json:"fecha"`
	ReporteID *string                    `json:"reporte_id"`
	Turnos    []SesionTurnoResponse      `json:"turnos"`
	Items     []model.ItemVerificado     `json:"items"`
	Ediciones []verificacion.Edicion     `json:"ediciones"`
	Efectivo  map[string]decimal.Decimal `json:"efectivo"`
	Notas     string                     `json:"notas"`
	Totales   verificacion.Totales       `json:"totales"`
}

// ToggleResponse is returned by the toggle route with the state reached.
type ToggleResponse struct {
	ItemID     string                   `json:"item_id"`
	Verificado model.EstadoVerificacion `json:"verificado"`
	Sesion     *SesionResponse          `json:"sesion"`
}

type VerificarTodoResponse struct {
	Actualizados int             `json:"actualizados"`
	Sesion       *SesionResponse `json:"sesion"`
}
