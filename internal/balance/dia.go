package balance

import (
	"sort"

	"grifopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrdenTurno ranks a shift name: Mañana < Tarde < Noche < anything else.
func OrdenTurno(nombre string) int {
	for i, n := range model.NombresTurno {
		if n == nombre {
			return i
		}
	}
	return len(model.NombresTurno)
}

// OrdenarGrupos sorts shift-group names by OrdenTurno, unknown names alphabetically last.
func OrdenarGrupos(nombres []string) {
	sort.SliceStable(nombres, func(i, j int) bool {
		oi, oj := OrdenTurno(nombres[i]), OrdenTurno(nombres[j])
		if oi != oj {
			return oi < oj
		}
		return nombres[i] < nombres[j]
	})
}

// ResumenTurno is one member shift of a group with its own balance.
type ResumenTurno struct {
	TurnoID    uuid.UUID `json:"turno_id"`
	Trabajador string    `json:"trabajador"`
	IslaID     string    `json:"isla_id"`
	Estado     string    `json:"estado"`
	Balance    Balance   `json:"balance"`
}

// Totales are the additive figures shared by groups and the whole day.
type Totales struct {
	Ventas           decimal.Decimal `json:"ventas"`
	Esperado         decimal.Decimal `json:"esperado"`
	Pagos            decimal.Decimal `json:"pagos"`
	Creditos         decimal.Decimal `json:"creditos"`
	Promociones      decimal.Decimal `json:"promociones"`
	Descuentos       decimal.Decimal `json:"descuentos"`
	Gastos           decimal.Decimal `json:"gastos"`
	Adelantos        decimal.Decimal `json:"adelantos"`
	Entregas         decimal.Decimal `json:"entregas"`
	Galones          decimal.Decimal `json:"galones"`
	GalonesPrestados decimal.Decimal `json:"galones_prestados"`
	EfectivoRecibido decimal.Decimal `json:"efectivo_recibido"`
}

func (t *Totales) sumarBalance(b Balance) {
	t.Ventas = t.Ventas.Add(b.TotalVentas)
	t.Esperado = t.Esperado.Add(b.EfectivoEsperado)
	t.Pagos = t.Pagos.Add(b.TotalPagos)
	t.Creditos = t.Creditos.Add(b.TotalCreditos)
	t.Promociones = t.Promociones.Add(b.TotalPromociones)
	t.Descuentos = t.Descuentos.Add(b.TotalDescuentos)
	t.Gastos = t.Gastos.Add(b.TotalGastos)
	t.Adelantos = t.Adelantos.Add(b.TotalAdelantos)
	t.Entregas = t.Entregas.Add(b.TotalEntregas)
	t.Galones = t.Galones.Add(b.TotalGalones)
	t.GalonesPrestados = t.GalonesPrestados.Add(b.GalonesPrestados())
}

func (t *Totales) sumar(o Totales) {
	t.Ventas = t.Ventas.Add(o.Ventas)
	t.Esperado = t.Esperado.Add(o.Esperado)
	t.Pagos = t.Pagos.Add(o.Pagos)
	t.Creditos = t.Creditos.Add(o.Creditos)
	t.Promociones = t.Promociones.Add(o.Promociones)
	t.Descuentos = t.Descuentos.Add(o.Descuentos)
	t.Gastos = t.Gastos.Add(o.Gastos)
	t.Adelantos = t.Adelantos.Add(o.Adelantos)
	t.Entregas = t.Entregas.Add(o.Entregas)
	t.Galones = t.Galones.Add(o.Galones)
	t.GalonesPrestados = t.GalonesPrestados.Add(o.GalonesPrestados)
	t.EfectivoRecibido = t.EfectivoRecibido.Add(o.EfectivoRecibido)
}

// DiferenciaEfectivo is counted cash minus expected cash.
func (t Totales) DiferenciaEfectivo() decimal.Decimal {
	return t.EfectivoRecibido.Sub(t.Esperado)
}

// GalonesCobrados are total gallons minus those lent out.
func (t Totales) GalonesCobrados() decimal.Decimal {
	return t.Galones.Sub(t.GalonesPrestados)
}

// ResumenGrupo aggregates every shift sharing a shift name on one date.
type ResumenGrupo struct {
	NombreTurno string         `json:"nombre_turno"`
	Turnos      []ResumenTurno `json:"turnos"`
	Totales
}

// ResumenDia is the day-level reduction over the per-shift balances.
type ResumenDia struct {
	Fecha  string         `json:"fecha"`
	Grupos []ResumenGrupo `json:"grupos"`
	Totales
}

// AgruparDia groups shifts by shift name and sums their balances. efectivo
// holds the auditor-counted cash per group; missing groups count as zero.
// Totals are always the sum of CalcularTurno over each shift.
func AgruparDia(fecha string, turnos []model.Turno, precios model.TablaPrecios, efectivo map[string]decimal.Decimal) ResumenDia {
	porGrupo := make(map[string][]model.Turno)
	var nombres []string
	for _, t := range turnos {
		if _, ok := porGrupo[t.NombreTurno]; !ok {
			nombres = append(nombres, t.NombreTurno)
		}
		porGrupo[t.NombreTurno] = append(porGrupo[t.NombreTurno], t)
	}
	OrdenarGrupos(nombres)

	dia := ResumenDia{Fecha: fecha}
	for _, nombre := range nombres {
		miembros := porGrupo[nombre]
		sort.SliceStable(miembros, func(i, j int) bool { return miembros[i].Secuencia < miembros[j].Secuencia })

		g := ResumenGrupo{NombreTurno: nombre}
		for _, t := range miembros {
			b := CalcularTurno(t, precios)
			g.Turnos = append(g.Turnos, ResumenTurno{
				TurnoID:    t.ID,
				Trabajador: t.Trabajador,
				IslaID:     t.IslaID,
				Estado:     t.Estado,
				Balance:    b,
			})
			g.sumarBalance(b)
		}
		if v, ok := efectivo[nombre]; ok {
			g.EfectivoRecibido = v
		}
		dia.Grupos = append(dia.Grupos, g)
		dia.sumar(g.Totales)
	}
	return dia
}
