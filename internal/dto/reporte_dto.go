package dto

import (
	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/shopspring/decimal"
)

// ReporteFilter is bound from query string of GET /v1/reportes.
type ReporteFilter struct {
	Fecha string `form:"fecha" validate:"omitempty,datetime=2006-01-02"`
	Tipo  string `form:"tipo"  validate:"omitempty,oneof=turno dia"`
}

type ReporteListItem struct {
	ID               string          `json:"id"`
	Tipo             string          `json:"tipo"`
	Fecha            string          `json:"fecha"`
	TurnoID          *string         `json:"turno_id"`
	Trabajador       string          `json:"trabajador"`
	NombreTurno      string          `json:"nombre_turno"`
	TotalVentas      decimal.Decimal `json:"total_ventas"`
	EfectivoRecibido decimal.Decimal `json:"efectivo_recibido"`
	ItemsRevisados   int             `json:"items_revisados"`
	TotalItems       int             `json:"total_items"`
	Corregido        bool            `json:"corregido"`
	VerificadoEn     string          `json:"verificado_en"`
}

type ReporteResponse struct {
	ReporteListItem
	IslaID           string                     `json:"isla_id"`
	Items            []model.ItemVerificado     `json:"items"`
	SubReportes      []model.DetalleTurno       `json:"sub_reportes"`
	EfectivoPorGrupo map[string]decimal.Decimal `json:"efectivo_por_grupo"`
	Notas            string                     `json:"notas"`
	TotalEsperado    decimal.Decimal            `json:"total_esperado"`
	// DiferenciaEfectivo is counted cash minus expected cash
	DiferenciaEfectivo decimal.Decimal `json:"diferencia_efectivo"`
	TotalGalones       decimal.Decimal `json:"total_galones"`
	GalonesPrestados   decimal.Decimal `json:"galones_prestados"`
	GalonesCobrados    decimal.Decimal `json:"galones_cobrados"`
	UpdatedAt          string          `json:"updated_at"`
}

// ResumenDiaResponse is the day aggregator output plus whether a day report
// already exists for the date.
type ResumenDiaResponse struct {
	balance.ResumenDia
	DiferenciaEfectivo decimal.Decimal `json:"diferencia_efectivo"`
	GalonesCobrados    decimal.Decimal `json:"galones_cobrados"`
	Verificado         bool            `json:"verificado"`
	ReporteID          *string         `json:"reporte_id"`
}
