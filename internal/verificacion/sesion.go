// Package verificacion implements the auditor's review of closed shifts: the
// per-item tri-state toggle, in-place corrections, and the patch list of
// meter, expense and delivery edits applied on top of the stored shifts.
//
// A Sesion is a working copy. Nothing in it touches the stored shifts until the
// caller commits the result of Escrituras and ConstruirReporte.
package verificacion

import (
	"errors"
	"sort"
	"time"

	"grifopos/internal/balance"
	"grifopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNoEncontrado  = errors.New("item de verificacion no encontrado")
	ErrTurnoFueraDeRango = errors.New("turno no pertenece a la sesion")
	ErrMedidorNoExiste   = errors.New("medidor no existe en el turno")
	ErrCategoriaInvalida = errors.New("categoria no verificable")
	ErrGrupoNoExiste     = errors.New("grupo de turno no existe en la sesion")
	ErrMontoNegativo     = errors.New("el monto no puede ser negativo")
)

// Sesion is one verification in progress, for a single shift or a whole day.
type Sesion struct {
	ID    uuid.UUID `json:"id"`
	Tipo  string    `json:"tipo"` // model.ReporteTurno | model.ReporteDia
	Fecha string    `json:"fecha"`

	// ReporteID and VerificadoEn are set when re-verifying an existing report
	ReporteID    *uuid.UUID `json:"reporte_id,omitempty"`
	VerificadoEn *time.Time `json:"verificado_en,omitempty"`

	// Turnos are the stored shifts as they were when the session started
	Turnos    []model.Turno              `json:"turnos"`
	Items     []model.ItemVerificado     `json:"items"`
	Ediciones []Edicion                  `json:"ediciones"`
	Efectivo  map[string]decimal.Decimal `json:"efectivo"`
	Notas     string                     `json:"notas"`
	CreadaEn  time.Time                  `json:"creada_en"`
}

// NuevaSesionTurno opens a single-shift verification. previo, when present,
// is the report being re-verified and seeds states, corrections, cash and notes.
func NuevaSesionTurno(t model.Turno, previo *model.ReporteVerificado, ahora time.Time) *Sesion {
	s := &Sesion{
		ID:       uuid.New(),
		Tipo:     model.ReporteTurno,
		Fecha:    t.Fecha,
		Turnos:   []model.Turno{t.Copia()},
		Efectivo: map[string]decimal.Decimal{},
		CreadaEn: ahora,
	}
	s.Items = itemsDeTurno(0, t)
	if previo != nil {
		s.sembrar(previo, previo.Items)
		if !previo.EfectivoRecibido.IsZero() {
			s.Efectivo[t.NombreTurno] = previo.EfectivoRecibido
		}
	}
	return s
}

// NuevaSesionDia opens a verification of every shift on fecha, ordered by
// shift group and creation order.
func NuevaSesionDia(fecha string, turnos []model.Turno, previo *model.ReporteVerificado, ahora time.Time) *Sesion {
	ordenados := make([]model.Turno, 0, len(turnos))
	for _, t := range turnos {
		ordenados = append(ordenados, t.Copia())
	}
	sort.SliceStable(ordenados, func(i, j int) bool {
		oi, oj := balance.OrdenTurno(ordenados[i].NombreTurno), balance.OrdenTurno(ordenados[j].NombreTurno)
		if oi != oj {
			return oi < oj
		}
		if ordenados[i].NombreTurno != ordenados[j].NombreTurno {
			return ordenados[i].NombreTurno < ordenados[j].NombreTurno
		}
		return ordenados[i].Secuencia < ordenados[j].Secuencia
	})

	s := &Sesion{
		ID:       uuid.New(),
		Tipo:     model.ReporteDia,
		Fecha:    fecha,
		Turnos:   ordenados,
		Efectivo: map[string]decimal.Decimal{},
		CreadaEn: ahora,
	}
	for i, t := range ordenados {
		s.Items = append(s.Items, itemsDeTurno(i, t)...)
	}
	if previo != nil {
		var previos []model.ItemVerificado
		for _, sub := range previo.SubReportes {
			previos = append(previos, sub.Items...)
		}
		s.sembrar(previo, previos)
		for grupo, monto := range previo.EfectivoPorGrupo {
			if s.tieneGrupo(grupo) {
				s.Efectivo[grupo] = monto
			}
		}
	}
	return s
}

func (s *Sesion) sembrar(previo *model.ReporteVerificado, items []model.ItemVerificado) {
	id := previo.ID
	en := previo.VerificadoEn
	s.ReporteID = &id
	s.VerificadoEn = &en
	s.Notas = previo.Notas

	porID := make(map[uuid.UUID]model.ItemVerificado, len(items))
	for _, it := range items {
		porID[it.ID] = it
	}
	for i, it := range s.Items {
		p, ok := porID[it.ID]
		if !ok || p.Categoria != it.Categoria {
			continue
		}
		p.TurnoIdx = it.TurnoIdx
		p.Trabajador = it.Trabajador
		s.Items[i] = p
	}
}

func itemsDeTurno(idx int, t model.Turno) []model.ItemVerificado {
	var out []model.ItemVerificado
	base := func(id uuid.UUID, categoria string) model.ItemVerificado {
		return model.ItemVerificado{ID: id, Categoria: categoria, TurnoIdx: idx, Trabajador: t.Trabajador}
	}
	for _, p := range t.Pagos {
		it := base(p.ID, model.CategoriaPago)
		it.Metodo, it.Referencia, it.Factura, it.Monto = p.Metodo, p.Referencia, p.Factura, p.Monto
		out = append(out, it)
	}
	for _, c := range t.Creditos {
		it := base(c.ID, model.CategoriaCredito)
		it.Producto, it.Cliente, it.Galones = c.Producto, c.Cliente, c.Galones
		out = append(out, it)
	}
	for _, p := range t.Promociones {
		it := base(p.ID, model.CategoriaPromocion)
		it.Producto, it.Cliente, it.Galones = p.Producto, p.Cliente, p.Galones
		out = append(out, it)
	}
	for _, d := range t.Descuentos {
		it := base(d.ID, model.CategoriaDescuento)
		it.Producto, it.Cliente, it.Galones, it.PrecioEspecial = d.Producto, d.Cliente, d.Galones, d.PrecioEspecial
		out = append(out, it)
	}
	return out
}

// Grupos returns the shift-name groups present in the session, in day order.
func (s *Sesion) Grupos() []string {
	vistos := map[string]bool{}
	var nombres []string
	for _, t := range s.Turnos {
		if !vistos[t.NombreTurno] {
			vistos[t.NombreTurno] = true
			nombres = append(nombres, t.NombreTurno)
		}
	}
	balance.OrdenarGrupos(nombres)
	return nombres
}

func (s *Sesion) tieneGrupo(grupo string) bool {
	for _, t := range s.Turnos {
		if t.NombreTurno == grupo {
			return true
		}
	}
	return false
}

func (s *Sesion) turno(idx int) (model.Turno, error) {
	if idx < 0 || idx >= len(s.Turnos) {
		return model.Turno{}, ErrTurnoFueraDeRango
	}
	return s.Turnos[idx], nil
}

func (s *Sesion) item(id uuid.UUID) (*model.ItemVerificado, error) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i], nil
		}
	}
	return nil, ErrItemNoEncontrado
}

// Alternar advances one item through Pendiente → Confirmado → Rechazado → Pendiente.
func (s *Sesion) Alternar(id uuid.UUID) (model.EstadoVerificacion, error) {
	it, err := s.item(id)
	if err != nil {
		return model.Pendiente, err
	}
	it.Verificado = it.Verificado.Siguiente()
	return it.Verificado, nil
}

// VerificarTodo forces every item of categoria to Confirmado, optionally only
// those of one shift. It returns how many items it touched.
func (s *Sesion) VerificarTodo(categoria string, turnoIdx *int) (int, error) {
	if !esVerificable(categoria) {
		return 0, ErrCategoriaInvalida
	}
	if turnoIdx != nil {
		if _, err := s.turno(*turnoIdx); err != nil {
			return 0, err
		}
	}
	n := 0
	for i := range s.Items {
		it := &s.Items[i]
		if it.Categoria != categoria || (turnoIdx != nil && it.TurnoIdx != *turnoIdx) {
			continue
		}
		it.Verificado = model.Confirmado
		n++
	}
	return n, nil
}

func esVerificable(categoria string) bool {
	for _, c := range model.CategoriasVerificables {
		if c == categoria {
			return true
		}
	}
	return false
}

// Correccion carries the fields to overwrite on an item; nil fields are left alone.
type Correccion struct {
	Metodo         *string
	Referencia     *string
	Factura        *string
	Monto          *decimal.Decimal
	Producto       *string
	Cliente        *string
	Galones        *decimal.Decimal
	PrecioEspecial *decimal.Decimal
}

// Corregir edits an item in place. Its identity and review state are kept.
func (s *Sesion) Corregir(id uuid.UUID, c Correccion) error {
	it, err := s.item(id)
	if err != nil {
		return err
	}
	for _, v := range []*decimal.Decimal{c.Monto, c.Galones, c.PrecioEspecial} {
		if v != nil && v.IsNegative() {
			return ErrMontoNegativo
		}
	}
	if c.Metodo != nil {
		it.Metodo = *c.Metodo
	}
	if c.Referencia != nil {
		it.Referencia = *c.Referencia
	}
	if c.Factura != nil {
		it.Factura = *c.Factura
	}
	if c.Monto != nil {
		it.Monto = *c.Monto
	}
	if c.Producto != nil {
		it.Producto = *c.Producto
	}
	if c.Cliente != nil {
		it.Cliente = *c.Cliente
	}
	if c.Galones != nil {
		it.Galones = *c.Galones
	}
	if c.PrecioEspecial != nil {
		it.PrecioEspecial = *c.PrecioEspecial
	}
	return nil
}

// RegistrarEfectivo records the counted cash for a shift group. For a
// single-shift session the group is always the shift's own name.
func (s *Sesion) RegistrarEfectivo(grupo string, monto decimal.Decimal) error {
	if monto.IsNegative() {
		return ErrMontoNegativo
	}
	if s.Tipo == model.ReporteTurno && len(s.Turnos) > 0 {
		grupo = s.Turnos[0].NombreTurno
	}
	if !s.tieneGrupo(grupo) {
		return ErrGrupoNoExiste
	}
	if s.Efectivo == nil {
		s.Efectivo = map[string]decimal.Decimal{}
	}
	s.Efectivo[grupo] = monto
	return nil
}

// EfectivoGrupo returns the counted cash of a group, zero if not entered.
func (s *Sesion) EfectivoGrupo(grupo string) decimal.Decimal {
	return s.Efectivo[grupo]
}

// ItemsDeTurno returns the session items belonging to shift idx.
func (s *Sesion) ItemsDeTurno(idx int) []model.ItemVerificado {
	var out []model.ItemVerificado
	for _, it := range s.Items {
		if it.TurnoIdx == idx {
			out = append(out, it)
		}
	}
	return out
}
