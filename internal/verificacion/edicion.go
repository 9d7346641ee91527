package verificacion

import (
	"grifopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tipos de edicion.
const (
	EditaMedidor  = "medidor"
	EditaGastos   = "gastos"
	EditaEntregas = "entregas"
)

// Edicion is one field-level edit to a stored shift. The patch list holds at
// most one edicion per (turno, tipo, clave); a later edit of the same field
// replaces the earlier one.
type Edicion struct {
	TurnoIdx int              `json:"turno_idx"`
	Tipo     string           `json:"tipo"`
	Clave    string           `json:"clave,omitempty"`
	Fin      *decimal.Decimal `json:"fin,omitempty"`
	Gastos   []model.Gasto    `json:"gastos,omitempty"`
	Entregas []string         `json:"entregas,omitempty"`
}

func (e Edicion) mismoCampo(o Edicion) bool {
	return e.TurnoIdx == o.TurnoIdx && e.Tipo == o.Tipo && e.Clave == o.Clave
}

// registrar adds e to the patch list, or drops the field's patch when e
// restores the original value.
func (s *Sesion) registrar(e Edicion, restaura bool) {
	out := s.Ediciones[:0]
	for _, prev := range s.Ediciones {
		if !prev.mismoCampo(e) {
			out = append(out, prev)
		}
	}
	if !restaura {
		out = append(out, e)
	}
	s.Ediciones = out
}

// EditarMedidor corrects the end reading of one dispenser. The start reading
// never changes.
func (s *Sesion) EditarMedidor(idx int, clave string, fin *decimal.Decimal) error {
	t, err := s.turno(idx)
	if err != nil {
		return err
	}
	m, ok := t.Medidores[clave]
	if !ok {
		return ErrMedidorNoExiste
	}
	if fin != nil && fin.IsNegative() {
		return ErrMontoNegativo
	}
	s.registrar(Edicion{TurnoIdx: idx, Tipo: EditaMedidor, Clave: clave, Fin: fin}, mismoFin(m.Fin, fin))
	return nil
}

// ReemplazarGastos replaces the expense list of one shift.
func (s *Sesion) ReemplazarGastos(idx int, gastos []model.Gasto) error {
	t, err := s.turno(idx)
	if err != nil {
		return err
	}
	for _, g := range gastos {
		if g.Monto.IsNegative() {
			return ErrMontoNegativo
		}
	}
	copia := append([]model.Gasto{}, gastos...)
	s.registrar(Edicion{TurnoIdx: idx, Tipo: EditaGastos, Gastos: copia}, mismosGastos(t.Gastos, gastos))
	return nil
}

// ReemplazarEntregas replaces the raw delivery entries of one shift.
func (s *Sesion) ReemplazarEntregas(idx int, entregas []string) error {
	t, err := s.turno(idx)
	if err != nil {
		return err
	}
	copia := append([]string{}, entregas...)
	s.registrar(Edicion{TurnoIdx: idx, Tipo: EditaEntregas, Entregas: copia}, mismasEntregas(t.Entregas, entregas))
	return nil
}

// Corregido reports whether the auditor altered any raw value of shift idx:
// a pending meter, expense or delivery edit, or an item whose values differ
// from the stored shift.
func (s *Sesion) Corregido(idx int) bool {
	return s.tieneEdiciones(idx) || s.itemsCorregidos(idx)
}

func (s *Sesion) tieneEdiciones(idx int) bool {
	for _, e := range s.Ediciones {
		if e.TurnoIdx == idx {
			return true
		}
	}
	return false
}

func (s *Sesion) itemsCorregidos(idx int) bool {
	t, err := s.turno(idx)
	if err != nil {
		return false
	}
	originales := make(map[uuid.UUID]model.ItemVerificado)
	for _, it := range itemsDeTurno(idx, t) {
		originales[it.ID] = it
	}
	for _, it := range s.Items {
		if it.TurnoIdx != idx {
			continue
		}
		if o, ok := originales[it.ID]; ok && !mismosValores(o, it) {
			return true
		}
	}
	return false
}

// mismosValores compares the value fields of two items, ignoring review state.
func mismosValores(a, b model.ItemVerificado) bool {
	return a.Metodo == b.Metodo &&
		a.Referencia == b.Referencia &&
		a.Factura == b.Factura &&
		a.Producto == b.Producto &&
		a.Cliente == b.Cliente &&
		a.Monto.Equal(b.Monto) &&
		a.Galones.Equal(b.Galones) &&
		a.PrecioEspecial.Equal(b.PrecioEspecial)
}

// TurnoTrabajo returns shift idx with the patch list applied.
func (s *Sesion) TurnoTrabajo(idx int) (model.Turno, error) {
	t, err := s.turno(idx)
	if err != nil {
		return model.Turno{}, err
	}
	w := t.Copia()
	for _, e := range s.Ediciones {
		if e.TurnoIdx != idx {
			continue
		}
		switch e.Tipo {
		case EditaMedidor:
			m := w.Medidores[e.Clave]
			if e.Fin != nil {
				fin := *e.Fin
				m.Fin = &fin
			} else {
				m.Fin = nil
			}
			w.Medidores[e.Clave] = m
		case EditaGastos:
			w.Gastos = append(model.Lista[model.Gasto]{}, e.Gastos...)
		case EditaEntregas:
			w.Entregas = append(model.Lista[string]{}, e.Entregas...)
		}
	}
	return w, nil
}

// Escritura is one stored shift the save must overwrite.
type Escritura struct {
	TurnoIdx int
	Trabajo  model.Turno
	Efectivo decimal.Decimal
}

// Escrituras lists the shifts whose stored record changes on save: those with
// edits, plus every shift of a group for which cash was counted. Item
// corrections live in the report only and never cause a write.
func (s *Sesion) Escrituras() []Escritura {
	var out []Escritura
	for i, t := range s.Turnos {
		efectivo := s.EfectivoGrupo(t.NombreTurno)
		if !s.tieneEdiciones(i) && efectivo.IsZero() {
			continue
		}
		w, _ := s.TurnoTrabajo(i)
		out = append(out, Escritura{TurnoIdx: i, Trabajo: w, Efectivo: efectivo})
	}
	return out
}

// Volcar copies the corrected fields of e onto the stored shift dst. Only meter
// end readings, expenses, deliveries and the counted cash are written; review
// states never reach the shift.
func (e Escritura) Volcar(dst *model.Turno) {
	for clave, m := range dst.Medidores {
		if w, ok := e.Trabajo.Medidores[clave]; ok {
			m.Fin = w.Fin
			dst.Medidores[clave] = m
		}
	}
	dst.Gastos = append(model.Lista[model.Gasto]{}, e.Trabajo.Gastos...)
	dst.Entregas = append(model.Lista[string]{}, e.Trabajo.Entregas...)
	efectivo := e.Efectivo
	dst.AdminEfectivoRecibido = &efectivo
}

func mismoFin(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func mismosGastos(a, b []model.Gasto) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Igual(b[i]) {
			return false
		}
	}
	return true
}

func mismasEntregas(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
