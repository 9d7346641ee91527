package balance

import (
	"grifopos/internal/model"

	"github.com/shopspring/decimal"
)

// Arrastre is the start reading a new shift inherits for one dispenser.
type Arrastre struct {
	Inicio   decimal.Decimal `json:"inicio"`
	Producto string          `json:"producto"`
	// Heredado is true when Inicio came from the prior shift's end reading
	Heredado bool `json:"heredado"`
}

// UltimoTurno picks the shift whose meters a new shift on islaID continues:
// the closed shift with the highest Secuencia, or, when none is closed, the
// highest Secuencia of any status.
func UltimoTurno(turnos []model.Turno, islaID string) (model.Turno, bool) {
	var (
		cerrado, cualquiera       model.Turno
		hayCerrado, hayCualquiera bool
	)
	for _, t := range turnos {
		if t.IslaID != islaID {
			continue
		}
		if !hayCualquiera || t.Secuencia > cualquiera.Secuencia {
			cualquiera, hayCualquiera = t, true
		}
		if t.Estado == model.EstadoCerrado && (!hayCerrado || t.Secuencia > cerrado.Secuencia) {
			cerrado, hayCerrado = t, true
		}
	}
	if hayCerrado {
		return cerrado, true
	}
	return cualquiera, hayCualquiera
}

// MedidoresArrastre returns the carried-over start reading for every dispenser
// key of the island's latest shift. An island with no history yields an empty map.
func MedidoresArrastre(turnos []model.Turno, islaID string) map[string]Arrastre {
	out := make(map[string]Arrastre)
	previo, ok := UltimoTurno(turnos, islaID)
	if !ok {
		return out
	}
	for clave, m := range previo.Medidores {
		a := Arrastre{Producto: m.Producto}
		if m.Fin != nil {
			a.Inicio = *m.Fin
			a.Heredado = true
		}
		out[clave] = a
	}
	return out
}

// SembrarMedidores builds the meter map of a new shift: every dispenser of the
// island, starting where the carryover left it or at zero. The product binding
// always comes from the topology.
func SembrarMedidores(isla model.Isla, arrastre map[string]Arrastre) (model.Medidores, bool) {
	medidores := isla.Medidores()
	hay := false
	for clave, m := range medidores {
		if a, ok := arrastre[clave]; ok && a.Heredado {
			m.Inicio = a.Inicio
			medidores[clave] = m
			hay = true
		}
	}
	return medidores, hay
}
