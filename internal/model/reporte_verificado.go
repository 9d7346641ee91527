package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de reporte verificado.
const (
	ReporteTurno = "turno"
	ReporteDia   = "dia"
)

// Categorias of line items. Only the first four are reviewable with the tri-state toggle.
const (
	CategoriaPago      = "pagos"
	CategoriaCredito   = "creditos"
	CategoriaPromocion = "promociones"
	CategoriaDescuento = "descuentos"
	CategoriaGasto     = "gastos"
	CategoriaAdelanto  = "adelantos"
	CategoriaEntrega   = "entregas"
	CategoriaBalon     = "balones"
)

// CategoriasVerificables are the collections reviewed item by item.
var CategoriasVerificables = []string{CategoriaPago, CategoriaCredito, CategoriaPromocion, CategoriaDescuento}

// EstadoVerificacion is the review state of one line item.
type EstadoVerificacion int8

const (
	Pendiente EstadoVerificacion = iota
	Confirmado
	Rechazado
)

// Siguiente cycles Pendiente → Confirmado → Rechazado → Pendiente.
func (e EstadoVerificacion) Siguiente() EstadoVerificacion {
	switch e {
	case Pendiente:
		return Confirmado
	case Confirmado:
		return Rechazado
	default:
		return Pendiente
	}
}

func (e EstadoVerificacion) String() string {
	switch e {
	case Confirmado:
		return "confirmado"
	case Rechazado:
		return "rechazado"
	default:
		return "pendiente"
	}
}

// MarshalJSON encodes the state as null / true / false.
func (e EstadoVerificacion) MarshalJSON() ([]byte, error) {
	switch e {
	case Confirmado:
		return []byte("true"), nil
	case Rechazado:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (e *EstadoVerificacion) UnmarshalJSON(b []byte) error {
	var v *bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("estado de verificacion invalido: %w", err)
	}
	switch {
	case v == nil:
		*e = Pendiente
	case *v:
		*e = Confirmado
	default:
		*e = Rechazado
	}
	return nil
}

// ItemVerificado wraps one reviewable line item with its review state.
// Value fields are a union over the four categories; unused ones stay zero.
type ItemVerificado struct {
	ID         uuid.UUID          `json:"id"`
	Categoria  string             `json:"categoria"`
	TurnoIdx   int                `json:"turno_idx"`
	Trabajador string             `json:"trabajador"`
	Verificado EstadoVerificacion `json:"verificado"`

	Metodo         string          `json:"metodo,omitempty"`
	Referencia     string          `json:"referencia,omitempty"`
	Factura        string          `json:"factura,omitempty"`
	Monto          decimal.Decimal `json:"monto"`
	Producto       string          `json:"producto,omitempty"`
	Cliente        string          `json:"cliente,omitempty"`
	Galones        decimal.Decimal `json:"galones"`
	PrecioEspecial decimal.Decimal `json:"precio_especial"`
}

// DetalleTurno is the per-shift part of a verified report. A day report holds
// one per shift of the date.
type DetalleTurno struct {
	TurnoID          uuid.UUID        `json:"turno_id"`
	Trabajador       string           `json:"trabajador"`
	IslaID           string           `json:"isla_id"`
	NombreTurno      string           `json:"nombre_turno"`
	Items            []ItemVerificado `json:"items"`
	EfectivoRecibido decimal.Decimal  `json:"efectivo_recibido"`
	Notas            string           `json:"notas"`
	TotalVentas      decimal.Decimal  `json:"total_ventas"`
	TotalGalones     decimal.Decimal  `json:"total_galones"`
	GalonesPrestados decimal.Decimal  `json:"galones_prestados"`
	GalonesCobrados  decimal.Decimal  `json:"galones_cobrados"`
	ItemsRevisados   int              `json:"items_revisados"`
	TotalItems       int              `json:"total_items"`
	Corregido        bool             `json:"corregido"`
}

// ReporteVerificado is the persisted outcome of a verification. Re-verifying
// overwrites it in full, keeping ID and VerificadoEn.
type ReporteVerificado struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Tipo string    `gorm:"type:varchar(10);not null;index"`

	// Tipo turno
	TurnoID     *uuid.UUID           `gorm:"type:uuid;index"`
	Trabajador  string               `gorm:"not null;default:''"`
	IslaID      string               `gorm:"type:varchar(50);not null;default:''"`
	NombreTurno string               `gorm:"type:varchar(20);not null;default:''"`
	Items       Lista[ItemVerificado] `gorm:"type:jsonb;not null;default:'[]'"`

	// Tipo dia
	Fecha            string              `gorm:"type:varchar(10);not null;index"`
	SubReportes      Lista[DetalleTurno] `gorm:"type:jsonb;not null;default:'[]'"`
	EfectivoPorGrupo MapaMontos          `gorm:"type:jsonb;not null;default:'{}'"`

	EfectivoRecibido decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Notas            string
	TotalVentas      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalEsperado    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalGalones     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	GalonesPrestados decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	GalonesCobrados  decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	ItemsRevisados   int             `gorm:"not null;default:0"`
	TotalItems       int             `gorm:"not null;default:0"`
	Corregido        bool            `gorm:"not null;default:false"`

	VerificadoEn time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

// TableName overrides GORM's default pluralization.
func (ReporteVerificado) TableName() string { return "reportes_verificados" }
