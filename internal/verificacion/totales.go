package verificacion

import (
	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/shopspring/decimal"
)

// Verificados are the confirmed-only sums per reviewable category.
type Verificados struct {
	Pagos       decimal.Decimal `json:"pagos"`
	Creditos    decimal.Decimal `json:"creditos"`
	Promociones decimal.Decimal `json:"promociones"`
	Descuentos  decimal.Decimal `json:"descuentos"`
}

func (v *Verificados) sumar(o Verificados) {
	v.Pagos = v.Pagos.Add(o.Pagos)
	v.Creditos = v.Creditos.Add(o.Creditos)
	v.Promociones = v.Promociones.Add(o.Promociones)
	v.Descuentos = v.Descuentos.Add(o.Descuentos)
}

// TotalesGrupo is the live verification state of one shift group.
type TotalesGrupo struct {
	NombreTurno string          `json:"nombre_turno"`
	Ventas      decimal.Decimal `json:"ventas"`
	Esperado    decimal.Decimal `json:"esperado"`
	Gastos      decimal.Decimal `json:"gastos"`
	Verificados Verificados     `json:"verificados"`
	// EfectivoHastaAhora is sales minus confirmed deductions minus all expenses
	EfectivoHastaAhora decimal.Decimal `json:"efectivo_hasta_ahora"`
	EfectivoRecibido   decimal.Decimal `json:"efectivo_recibido"`
	DiferenciaEfectivo decimal.Decimal `json:"diferencia_efectivo"`
}

// Totales is the running figure shown to the auditor before saving.
type Totales struct {
	Grupos             []TotalesGrupo  `json:"grupos"`
	Ventas             decimal.Decimal `json:"ventas"`
	Esperado           decimal.Decimal `json:"esperado"`
	Gastos             decimal.Decimal `json:"gastos"`
	Verificados        Verificados     `json:"verificados"`
	EfectivoHastaAhora decimal.Decimal `json:"efectivo_hasta_ahora"`
	EfectivoRecibido   decimal.Decimal `json:"efectivo_recibido"`
	DiferenciaEfectivo decimal.Decimal `json:"diferencia_efectivo"`
	ItemsRevisados     int             `json:"items_revisados"`
	TotalItems         int             `json:"total_items"`
}

// ValorItem is the cash weight of an item: the amount for payments, list value
// for credits and promotions, the margin given away for discounts.
func ValorItem(it model.ItemVerificado, precios model.TablaPrecios) decimal.Decimal {
	switch it.Categoria {
	case model.CategoriaPago:
		return it.Monto
	case model.CategoriaCredito, model.CategoriaPromocion:
		return balance.ValorGalones(it.Galones, it.Producto, precios)
	case model.CategoriaDescuento:
		return balance.ValorDescuento(it.Galones, it.Producto, it.PrecioEspecial, precios)
	default:
		return decimal.Zero
	}
}

// verificadosDe sums confirmed items of shift idx. Pending and rejected items
// contribute nothing.
func (s *Sesion) verificadosDe(idx int, precios model.TablaPrecios) Verificados {
	var v Verificados
	for _, it := range s.Items {
		if it.TurnoIdx != idx || it.Verificado != model.Confirmado {
			continue
		}
		valor := ValorItem(it, precios)
		switch it.Categoria {
		case model.CategoriaPago:
			v.Pagos = v.Pagos.Add(valor)
		case model.CategoriaCredito:
			v.Creditos = v.Creditos.Add(valor)
		case model.CategoriaPromocion:
			v.Promociones = v.Promociones.Add(valor)
		case model.CategoriaDescuento:
			v.Descuentos = v.Descuentos.Add(valor)
		}
	}
	return v
}

// BalanceTrabajo is the balance of shift idx after the patch list.
func (s *Sesion) BalanceTrabajo(idx int, precios model.TablaPrecios) (balance.Balance, error) {
	w, err := s.TurnoTrabajo(idx)
	if err != nil {
		return balance.Balance{}, err
	}
	return balance.CalcularTurno(w, precios), nil
}

// Totales computes the running verified totals per group and for the session.
// Expenses have no review state and are always deducted in full.
func (s *Sesion) Totales(precios model.TablaPrecios) Totales {
	var tot Totales
	for _, grupo := range s.Grupos() {
		g := TotalesGrupo{NombreTurno: grupo, EfectivoRecibido: s.EfectivoGrupo(grupo)}
		for i, t := range s.Turnos {
			if t.NombreTurno != grupo {
				continue
			}
			b, _ := s.BalanceTrabajo(i, precios)
			g.Ventas = g.Ventas.Add(b.TotalVentas)
			g.Esperado = g.Esperado.Add(b.EfectivoEsperado)
			g.Gastos = g.Gastos.Add(b.TotalGastos)
			g.Verificados.sumar(s.verificadosDe(i, precios))
		}
		g.EfectivoHastaAhora = balance.Esperado(g.Ventas, g.Verificados.Pagos, g.Verificados.Creditos,
			g.Verificados.Promociones, g.Verificados.Descuentos, g.Gastos)
		g.DiferenciaEfectivo = g.EfectivoRecibido.Sub(g.Esperado)

		tot.Grupos = append(tot.Grupos, g)
		tot.Ventas = tot.Ventas.Add(g.Ventas)
		tot.Esperado = tot.Esperado.Add(g.Esperado)
		tot.Gastos = tot.Gastos.Add(g.Gastos)
		tot.Verificados.sumar(g.Verificados)
		tot.EfectivoRecibido = tot.EfectivoRecibido.Add(g.EfectivoRecibido)
	}
	tot.EfectivoHastaAhora = balance.Esperado(tot.Ventas, tot.Verificados.Pagos, tot.Verificados.Creditos,
		tot.Verificados.Promociones, tot.Verificados.Descuentos, tot.Gastos)
	tot.DiferenciaEfectivo = tot.EfectivoRecibido.Sub(tot.Esperado)
	tot.ItemsRevisados, tot.TotalItems = contar(s.Items)
	return tot
}

// contar returns confirmed and total item counts.
func contar(items []model.ItemVerificado) (revisados, total int) {
	for _, it := range items {
		if it.Verificado == model.Confirmado {
			revisados++
		}
	}
	return revisados, len(items)
}
