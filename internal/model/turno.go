package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de un turno. abierto → cerrado happens once; corrections after close
// only flow through verification.
const (
	EstadoAbierto = "abierto"
	EstadoCerrado = "cerrado"
)

// Nombres de turno, in day order.
const (
	TurnoManana = "Mañana"
	TurnoTarde  = "Tarde"
	TurnoNoche  = "Noche"
)

// NombresTurno lists the recognised shift names in their fixed day order.
var NombresTurno = []string{TurnoManana, TurnoTarde, TurnoNoche}

// Metodos de pago accepted on a Pago.
const (
	MetodoTarjeta       = "tarjeta"
	MetodoYape          = "yape"
	MetodoPlin          = "plin"
	MetodoTransferencia = "transferencia"
	MetodoOtro          = "otro"
)

// Turno is one worker's shift on an island.
// Medidores.Inicio is fixed at creation; only Fin changes afterwards.
type Turno struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// Secuencia is the creation order, used as the carryover recency key
	Secuencia   int64  `gorm:"not null;uniqueIndex"`
	Trabajador  string `gorm:"not null"`
	IslaID      string `gorm:"type:varchar(50);not null;index"`
	Fecha       string `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	NombreTurno string `gorm:"type:varchar(20);not null"`
	Estado      string `gorm:"type:varchar(20);not null;default:'abierto'"`

	Medidores   Medidores        `gorm:"type:jsonb;not null;default:'{}'"`
	Balones     Lista[Balon]     `gorm:"type:jsonb;not null;default:'[]'"`
	Pagos       Lista[Pago]      `gorm:"type:jsonb;not null;default:'[]'"`
	Creditos    Lista[Credito]   `gorm:"type:jsonb;not null;default:'[]'"`
	Promociones Lista[Promocion] `gorm:"type:jsonb;not null;default:'[]'"`
	Descuentos  Lista[Descuento] `gorm:"type:jsonb;not null;default:'[]'"`
	Gastos      Lista[Gasto]     `gorm:"type:jsonb;not null;default:'[]'"`
	Adelantos   Lista[Adelanto]  `gorm:"type:jsonb;not null;default:'[]'"`
	// Entregas are the raw amounts typed in for each cash hand-in
	Entregas Lista[string] `gorm:"type:jsonb;not null;default:'[]'"`

	HayArrastre bool `gorm:"not null;default:false"`
	// AdminEfectivoRecibido is the cash counted by the auditor during verification
	AdminEfectivoRecibido *decimal.Decimal `gorm:"type:decimal(12,2)"`

	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
}

// Medidor is one dispenser's meter pair. Fin is nil until the worker records it.
type Medidor struct {
	Inicio   decimal.Decimal  `json:"inicio"`
	Fin      *decimal.Decimal `json:"fin"`
	Producto string           `json:"producto"`
}

// Medidores maps a dispenser key (cara-surtidor) to its meter pair.
type Medidores map[string]Medidor

func (m Medidores) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]Medidor(m))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *Medidores) Scan(src interface{}) error {
	out := map[string]Medidor{}
	if err := scanJSON(src, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// Clone returns an independent copy of the meter map.
func (m Medidores) Clone() Medidores {
	out := make(Medidores, len(m))
	for k, v := range m {
		if v.Fin != nil {
			fin := *v.Fin
			v.Fin = &fin
		}
		out[k] = v
	}
	return out
}

// Balon is a GLP cylinder sale line (GLP islands only).
type Balon struct {
	ID       uuid.UUID       `json:"id"`
	Tamano   string          `json:"tamano"`
	Cantidad int             `json:"cantidad"`
	Precio   decimal.Decimal `json:"precio"`
}

type Pago struct {
	ID         uuid.UUID       `json:"id"`
	Metodo     string          `json:"metodo"`
	Referencia string          `json:"referencia"`
	Factura    string          `json:"factura"`
	Monto      decimal.Decimal `json:"monto"`
}

// Credito is fuel dispensed to a client without immediate payment.
type Credito struct {
	ID       uuid.UUID       `json:"id"`
	Producto string          `json:"producto"`
	Cliente  string          `json:"cliente"`
	Galones  decimal.Decimal `json:"galones"`
}

// Promocion is fuel given away under a promotion.
type Promocion struct {
	ID       uuid.UUID       `json:"id"`
	Producto string          `json:"producto"`
	Cliente  string          `json:"cliente"`
	Galones  decimal.Decimal `json:"galones"`
}

// Descuento is fuel sold below list price; only the margin given away is deducted.
type Descuento struct {
	ID             uuid.UUID       `json:"id"`
	Producto       string          `json:"producto"`
	Cliente        string          `json:"cliente"`
	Galones        decimal.Decimal `json:"galones"`
	PrecioEspecial decimal.Decimal `json:"precio_especial"`
}

type Gasto struct {
	ID      uuid.UUID       `json:"id"`
	Detalle string          `json:"detalle"`
	Monto   decimal.Decimal `json:"monto"`
}

// Igual reports whether two expenses carry the same values.
func (g Gasto) Igual(o Gasto) bool {
	return g.ID == o.ID && g.Detalle == o.Detalle && g.Monto.Equal(o.Monto)
}

// Adelanto is cash received ahead of a future delivery.
type Adelanto struct {
	ID      uuid.UUID       `json:"id"`
	Cliente string          `json:"cliente"`
	Monto   decimal.Decimal `json:"monto"`
}

// Copia returns a deep copy so callers can mutate it without touching the original.
func (t Turno) Copia() Turno {
	c := t
	c.Medidores = t.Medidores.Clone()
	c.Balones = append(Lista[Balon](nil), t.Balones...)
	c.Pagos = append(Lista[Pago](nil), t.Pagos...)
	c.Creditos = append(Lista[Credito](nil), t.Creditos...)
	c.Promociones = append(Lista[Promocion](nil), t.Promociones...)
	c.Descuentos = append(Lista[Descuento](nil), t.Descuentos...)
	c.Gastos = append(Lista[Gasto](nil), t.Gastos...)
	c.Adelantos = append(Lista[Adelanto](nil), t.Adelantos...)
	c.Entregas = append(Lista[string](nil), t.Entregas...)
	if t.AdminEfectivoRecibido != nil {
		v := *t.AdminEfectivoRecibido
		c.AdminEfectivoRecibido = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		c.ClosedAt = &v
	}
	return c
}
