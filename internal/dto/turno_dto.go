package dto

import (
	"grifopos/internal/model"

	"github.com/shopspring/decimal"
)

// Raw numeric fields travel as strings and are parsed leniently by the service:
// anything non-numeric counts as zero.

// ─── Filter / List ──────────────────────────────────────────────────────────

// TurnoFilter is bound from query string of GET /v1/turnos.
type TurnoFilter struct {
	Fecha  string `form:"fecha"  validate:"omitempty,datetime=2006-01-02"`
	IslaID string `form:"isla_id"`
	Estado string `form:"estado" validate:"omitempty,oneof=abierto cerrado"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirTurnoRequest struct {
	IslaID      string `json:"isla_id"      validate:"required"`
	Trabajador  string `json:"trabajador"   validate:"required,min=2"`
	Fecha       string `json:"fecha"        validate:"required,datetime=2006-01-02"`
	NombreTurno string `json:"nombre_turno" validate:"required,oneof=Mañana Tarde Noche"`
}

// MedidoresRequest records end readings keyed by dispenser ("A-1"). An empty
// value clears the reading.
type MedidoresRequest struct {
	Medidores map[string]string `json:"medidores" validate:"required,min=1"`
}

// ItemRequest is a line item of any category; only the fields of the target
// category are read.
type ItemRequest struct {
	// pagos
	Metodo     string `json:"metodo"     validate:"omitempty,oneof=tarjeta yape plin transferencia otro"`
	Referencia string `json:"referencia" validate:"max=100"`
	Factura    string `json:"factura"    validate:"max=50"`
	// pagos, gastos, adelantos
	Monto string `json:"monto"`
	// creditos, promociones, descuentos
	Producto       string `json:"producto"`
	Cliente        string `json:"cliente" validate:"max=120"`
	Galones        string `json:"galones"`
	PrecioEspecial string `json:"precio_especial"`
	// gastos
	Detalle string `json:"detalle" validate:"max=200"`
	// balones
	Tamano   string `json:"tamano"`
	Cantidad int    `json:"cantidad" validate:"min=0"`
	Precio   string `json:"precio"`
}

type EntregasRequest struct {
	Entregas []string `json:"entregas" validate:"max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MedidorResponse struct {
	Clave    string           `json:"clave"`
	Producto string           `json:"producto"`
	Inicio   decimal.Decimal  `json:"inicio"`
	Fin      *decimal.Decimal `json:"fin"`
	Galones  decimal.Decimal  `json:"galones"`
}

type TurnoResponse struct {
	ID                    string            `json:"id"`
	Secuencia             int64             `json:"secuencia"`
	Trabajador            string            `json:"trabajador"`
	IslaID                string            `json:"isla_id"`
	Fecha                 string            `json:"fecha"`
	NombreTurno           string            `json:"nombre_turno"`
	Estado                string            `json:"estado"`
	HayArrastre           bool              `json:"hay_arrastre"`
	Medidores             []MedidorResponse `json:"medidores"`
	Balones               []model.Balon     `json:"balones"`
	Pagos                 []model.Pago      `json:"pagos"`
	Creditos              []model.Credito   `json:"creditos"`
	Promociones           []model.Promocion `json:"promociones"`
	Descuentos            []model.Descuento `json:"descuentos"`
	Gastos                []model.Gasto     `json:"gastos"`
	Adelantos             []model.Adelanto  `json:"adelantos"`
	Entregas              []string          `json:"entregas"`
	AdminEfectivoRecibido *decimal.Decimal  `json:"admin_efectivo_recibido"`
	CreatedAt             string            `json:"created_at"`
	ClosedAt              *string           `json:"closed_at"`
}

type VentaProductoResponse struct {
	Producto string          `json:"producto"`
	Galones  decimal.Decimal `json:"galones"`
	Monto    decimal.Decimal `json:"monto"`
}

type BalanceResponse struct {
	TurnoID            string                  `json:"turno_id"`
	VentasPorProducto  []VentaProductoResponse `json:"ventas_por_producto"`
	VentasMedidor      decimal.Decimal         `json:"ventas_medidor"`
	VentasBalones      decimal.Decimal         `json:"ventas_balones"`
	TotalVentas        decimal.Decimal         `json:"total_ventas"`
	TotalGalones       decimal.Decimal         `json:"total_galones"`
	GalonesPrestados   decimal.Decimal         `json:"galones_prestados"`
	GalonesCobrados    decimal.Decimal         `json:"galones_cobrados"`
	TotalPagos         decimal.Decimal         `json:"total_pagos"`
	TotalCreditos      decimal.Decimal         `json:"total_creditos"`
	TotalPromociones   decimal.Decimal         `json:"total_promociones"`
	TotalDescuentos    decimal.Decimal         `json:"total_descuentos"`
	TotalGastos        decimal.Decimal         `json:"total_gastos"`
	TotalAdelantos     decimal.Decimal         `json:"total_adelantos"`
	TotalEntregas      decimal.Decimal         `json:"total_entregas"`
	EfectivoEsperado   decimal.Decimal         `json:"efectivo_esperado"`
	Diferencia         decimal.Decimal         `json:"diferencia"`
	Estado             string                  `json:"estado"`  // cuadrado | falta | sobra
	Mensaje            string                  `json:"mensaje"` // e.g. "FALTA S/10.00"
	ProductosSinPrecio []string                `json:"productos_sin_precio,omitempty"`
}

// Monto rounds an amount to céntimos for presentation.
func Monto(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

// Galones rounds a gallon figure for presentation.
func Galones(d decimal.Decimal) decimal.Decimal { return d.Round(3) }

type PrecioResponse struct {
	Producto string          `json:"producto"`
	Precio   decimal.Decimal `json:"precio"`
}
