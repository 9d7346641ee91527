package balance

import (
	"fmt"
	"sort"

	"grifopos/internal/model"

	"github.com/shopspring/decimal"
)

// toleranciaCentimos is the band, in cents, inside which a shift counts as balanced.
const toleranciaCentimos = 1

// Tolerancia returns the balanced band as an amount (S/0.01).
func Tolerancia() decimal.Decimal { return decimal.New(toleranciaCentimos, -2) }

// Estados de cuadre.
const (
	Cuadrado = "cuadrado"
	Falta    = "falta"
	Sobra    = "sobra"
)

// VentaProducto is the meter-based sale of one product.
type VentaProducto struct {
	Galones decimal.Decimal `json:"galones"`
	Monto   decimal.Decimal `json:"monto"`
}

// Balance is the full reconciliation of one shift.
type Balance struct {
	VentasPorProducto map[string]VentaProducto `json:"ventas_por_producto"`
	VentasMedidor     decimal.Decimal          `json:"ventas_medidor"`
	VentasBalones     decimal.Decimal          `json:"ventas_balones"`
	TotalVentas       decimal.Decimal          `json:"total_ventas"`
	TotalGalones      decimal.Decimal          `json:"total_galones"`
	GalonesCredito    decimal.Decimal          `json:"galones_credito"`
	GalonesPromocion  decimal.Decimal          `json:"galones_promocion"`

	TotalPagos       decimal.Decimal `json:"total_pagos"`
	TotalCreditos    decimal.Decimal `json:"total_creditos"`
	TotalPromociones decimal.Decimal `json:"total_promociones"`
	TotalDescuentos  decimal.Decimal `json:"total_descuentos"`
	TotalGastos      decimal.Decimal `json:"total_gastos"`
	TotalAdelantos   decimal.Decimal `json:"total_adelantos"`
	TotalEntregas    decimal.Decimal `json:"total_entregas"`

	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	// Diferencia < 0 is a shortfall, > 0 an overage
	Diferencia decimal.Decimal `json:"diferencia"`

	// ProductosSinPrecio lists products that sold gallons without a listed price
	ProductosSinPrecio []string `json:"productos_sin_precio,omitempty"`
}

// VentasPorProducto accumulates meter gallons and amounts per bound product.
func VentasPorProducto(t model.Turno, precios model.TablaPrecios) map[string]VentaProducto {
	out := make(map[string]VentaProducto)
	for _, m := range t.Medidores {
		g := Galones(m.Inicio, m.Fin)
		v := out[m.Producto]
		v.Galones = v.Galones.Add(g)
		v.Monto = v.Monto.Add(g.Mul(precios.Precio(m.Producto)))
		out[m.Producto] = v
	}
	return out
}

// ValorGalones values gallons of producto at full list price (credits, promotions).
func ValorGalones(galones decimal.Decimal, producto string, precios model.TablaPrecios) decimal.Decimal {
	return galones.Mul(precios.Precio(producto))
}

// ValorDescuento is the margin given away: gallons × max(0, list − special).
func ValorDescuento(galones decimal.Decimal, producto string, especial decimal.Decimal, precios model.TablaPrecios) decimal.Decimal {
	margen := precios.Precio(producto).Sub(especial)
	if margen.IsNegative() {
		return decimal.Zero
	}
	return galones.Mul(margen)
}

// CalcularTurno computes sales, every deduction, expected cash and the signed
// difference for one shift.
func CalcularTurno(t model.Turno, precios model.TablaPrecios) Balance {
	b := Balance{VentasPorProducto: VentasPorProducto(t, precios)}

	for producto, v := range b.VentasPorProducto {
		b.VentasMedidor = b.VentasMedidor.Add(v.Monto)
		b.TotalGalones = b.TotalGalones.Add(v.Galones)
		if v.Galones.IsPositive() && !precios.Tiene(producto) {
			b.ProductosSinPrecio = append(b.ProductosSinPrecio, producto)
		}
	}
	sort.Strings(b.ProductosSinPrecio)

	for _, c := range t.Balones {
		b.VentasBalones = b.VentasBalones.Add(decimal.NewFromInt(int64(c.Cantidad)).Mul(c.Precio))
	}
	b.TotalVentas = b.VentasMedidor.Add(b.VentasBalones)

	for _, p := range t.Pagos {
		b.TotalPagos = b.TotalPagos.Add(p.Monto)
	}
	for _, c := range t.Creditos {
		b.GalonesCredito = b.GalonesCredito.Add(c.Galones)
		b.TotalCreditos = b.TotalCreditos.Add(ValorGalones(c.Galones, c.Producto, precios))
	}
	for _, p := range t.Promociones {
		b.GalonesPromocion = b.GalonesPromocion.Add(p.Galones)
		b.TotalPromociones = b.TotalPromociones.Add(ValorGalones(p.Galones, p.Producto, precios))
	}
	for _, d := range t.Descuentos {
		b.TotalDescuentos = b.TotalDescuentos.Add(ValorDescuento(d.Galones, d.Producto, d.PrecioEspecial, precios))
	}
	for _, g := range t.Gastos {
		b.TotalGastos = b.TotalGastos.Add(g.Monto)
	}
	for _, a := range t.Adelantos {
		b.TotalAdelantos = b.TotalAdelantos.Add(a.Monto)
	}
	for _, e := range t.Entregas {
		b.TotalEntregas = b.TotalEntregas.Add(ParseMonto(e))
	}

	b.EfectivoEsperado = Esperado(b.TotalVentas, b.TotalPagos, b.TotalCreditos, b.TotalPromociones, b.TotalDescuentos, b.TotalGastos)
	// Advances are cash already in hand, so they add to what was delivered.
	b.Diferencia = b.TotalEntregas.
		Add(b.TotalPagos).
		Add(b.TotalAdelantos).
		Sub(b.TotalVentas).
		Add(b.TotalCreditos).
		Add(b.TotalPromociones).
		Add(b.TotalDescuentos).
		Add(b.TotalGastos)
	return b
}

// Esperado is sales minus every deduction category.
func Esperado(ventas, pagos, creditos, promociones, descuentos, gastos decimal.Decimal) decimal.Decimal {
	return ventas.Sub(pagos).Sub(creditos).Sub(promociones).Sub(descuentos).Sub(gastos)
}

// GalonesPrestados are gallons handed out without cash collection.
func (b Balance) GalonesPrestados() decimal.Decimal {
	return b.GalonesCredito.Add(b.GalonesPromocion)
}

// GalonesCobrados are the meter gallons actually collected in cash or payments.
func (b Balance) GalonesCobrados() decimal.Decimal {
	return b.TotalGalones.Sub(b.GalonesPrestados())
}

// Estado classifies the difference using the fixed one-cent tolerance.
func (b Balance) Estado() string {
	return EstadoDiferencia(b.Diferencia)
}

// Mensaje is the worker-facing outcome, e.g. "FALTA S/10.00".
func (b Balance) Mensaje() string {
	return MensajeDiferencia(b.Diferencia)
}

// EstadoDiferencia classifies any signed cash difference.
func EstadoDiferencia(d decimal.Decimal) string {
	switch {
	case d.Abs().LessThan(Tolerancia()):
		return Cuadrado
	case d.IsNegative():
		return Falta
	default:
		return Sobra
	}
}

func MensajeDiferencia(d decimal.Decimal) string {
	switch EstadoDiferencia(d) {
	case Cuadrado:
		return "CUADRADO"
	case Falta:
		return fmt.Sprintf("FALTA S/%s", d.Abs().StringFixed(2))
	default:
		return fmt.Sprintf("ENTREGASTE DE MÁS S/%s", d.StringFixed(2))
	}
}
