// Package repotest provides in-memory repositories for unit tests. DB() is nil
// so services run their transactions as plain function calls.
package repotest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"grifopos/internal/balance"
	"grifopos/internal/model"
	"grifopos/internal/repository"
	"grifopos/internal/verificacion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Turnos ────────────────────────────────────────────────────────────────────

type Turnos struct {
	mu     sync.Mutex
	turnos map[uuid.UUID]model.Turno
	seq    int64
	// FallarUpdate makes UpdateTx fail for that shift
	FallarUpdate map[uuid.UUID]error
}

func NewTurnos(iniciales ...model.Turno) *Turnos {
	r := &Turnos{turnos: map[uuid.UUID]model.Turno{}, FallarUpdate: map[uuid.UUID]error{}}
	for _, t := range iniciales {
		t := t
		_ = r.Create(context.Background(), &t)
	}
	return r
}

func (r *Turnos) DB() *gorm.DB { return nil }

func (r *Turnos) filtrar(keep func(model.Turno) bool) []model.Turno {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Turno
	for _, t := range r.turnos {
		if keep(t) {
			out = append(out, t.Copia())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Secuencia < out[j].Secuencia })
	return out
}

func (r *Turnos) List(_ context.Context) ([]model.Turno, error) {
	return r.filtrar(func(model.Turno) bool { return true }), nil
}

func (r *Turnos) ListByFecha(_ context.Context, fecha string) ([]model.Turno, error) {
	return r.filtrar(func(t model.Turno) bool { return t.Fecha == fecha }), nil
}

func (r *Turnos) ListByIsla(_ context.Context, islaID string) ([]model.Turno, error) {
	return r.filtrar(func(t model.Turno) bool { return t.IslaID == islaID }), nil
}

func (r *Turnos) FindByID(_ context.Context, id uuid.UUID) (*model.Turno, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.turnos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := t.Copia()
	return &c, nil
}

func (r *Turnos) Create(_ context.Context, t *model.Turno) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Secuencia = r.seq
	if t.Estado == "" {
		t.Estado = model.EstadoAbierto
	}
	r.turnos[t.ID] = t.Copia()
	return nil
}

func (r *Turnos) Update(ctx context.Context, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error) {
	return r.UpdateTx(ctx, nil, id, fn)
}

func (r *Turnos) UpdateTx(_ context.Context, _ *gorm.DB, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FallarUpdate[id]; err != nil {
		return nil, err
	}
	t, ok := r.turnos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := t.Copia()
	if err := fn(&c); err != nil {
		return nil, err
	}
	r.turnos[id] = c.Copia()
	return &c, nil
}

func (r *Turnos) Close(ctx context.Context, id uuid.UUID, ahora time.Time) (*model.Turno, error) {
	return r.Update(ctx, id, func(t *model.Turno) error {
		if t.Estado != model.EstadoAbierto {
			return repository.ErrTurnoCerrado
		}
		t.Estado = model.EstadoCerrado
		t.ClosedAt = &ahora
		return nil
	})
}

// ── Reportes ──────────────────────────────────────────────────────────────────

var _ repository.ReporteRepository = (*Reportes)(nil)

type Reportes struct {
	mu       sync.Mutex
	reportes map[uuid.UUID]model.ReporteVerificado
}

func NewReportes() *Reportes {
	return &Reportes{reportes: map[uuid.UUID]model.ReporteVerificado{}}
}

// Todos returns every stored report, newest first.
func (r *Reportes) Todos() []model.ReporteVerificado {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ReporteVerificado, 0, len(r.reportes))
	for _, rep := range r.reportes {
		out = append(out, rep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VerificadoEn.After(out[j].VerificadoEn) })
	return out
}

func (r *Reportes) List(_ context.Context, fecha string) ([]model.ReporteVerificado, error) {
	var out []model.ReporteVerificado
	for _, rep := range r.Todos() {
		if fecha == "" || rep.Fecha == fecha {
			out = append(out, rep)
		}
	}
	return out, nil
}

func (r *Reportes) buscar(keep func(model.ReporteVerificado) bool) (*model.ReporteVerificado, error) {
	for _, rep := range r.Todos() {
		if keep(rep) {
			rep := rep
			return &rep, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Reportes) FindByID(_ context.Context, id uuid.UUID) (*model.ReporteVerificado, error) {
	return r.buscar(func(rep model.ReporteVerificado) bool { return rep.ID == id })
}

func (r *Reportes) FindByTurno(_ context.Context, turnoID uuid.UUID) (*model.ReporteVerificado, error) {
	return r.buscar(func(rep model.ReporteVerificado) bool {
		return rep.Tipo == model.ReporteTurno && rep.TurnoID != nil && *rep.TurnoID == turnoID
	})
}

func (r *Reportes) FindByFecha(_ context.Context, fecha string) (*model.ReporteVerificado, error) {
	return r.buscar(func(rep model.ReporteVerificado) bool {
		return rep.Tipo == model.ReporteDia && rep.Fecha == fecha
	})
}

// Sembrar stores reports as if a verification had saved them.
func (r *Reportes) Sembrar(reps ...*model.ReporteVerificado) {
	for _, rep := range reps {
		if rep.ID == uuid.Nil {
			rep.ID = uuid.New()
		}
		_ = r.SaveTx(context.Background(), nil, rep)
	}
}

func (r *Reportes) SaveTx(_ context.Context, _ *gorm.DB, rep *model.ReporteVerificado) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rep.UpdatedAt = time.Now()
	r.reportes[rep.ID] = *rep
	return nil
}

// ── Precios ───────────────────────────────────────────────────────────────────

type Precios struct {
	mu    sync.Mutex
	tabla model.TablaPrecios
}

func NewPrecios(tabla model.TablaPrecios) *Precios {
	if tabla == nil {
		tabla = model.TablaPrecios{}
	}
	return &Precios{tabla: tabla}
}

func (r *Precios) Tabla(_ context.Context) (model.TablaPrecios, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(model.TablaPrecios, len(r.tabla))
	for k, v := range r.tabla {
		out[k] = v
	}
	return out, nil
}

func (r *Precios) List(_ context.Context) ([]model.Precio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Precio, 0, len(r.tabla))
	for p, v := range r.tabla {
		out = append(out, model.Precio{Producto: p, Valor: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Producto < out[j].Producto })
	return out, nil
}

func (r *Precios) Upsert(_ context.Context, p *model.Precio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabla[p.Producto] = p.Valor
	return nil
}

// ── Sesiones ──────────────────────────────────────────────────────────────────

// Sesiones round-trips through JSON like the Redis store does.
type Sesiones struct {
	mu       sync.Mutex
	sesiones map[uuid.UUID][]byte
}

func NewSesiones() *Sesiones {
	return &Sesiones{sesiones: map[uuid.UUID][]byte{}}
}

func (r *Sesiones) Save(_ context.Context, s *verificacion.Sesion) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sesiones[s.ID] = data
	return nil
}

func (r *Sesiones) Find(_ context.Context, id uuid.UUID) (*verificacion.Sesion, error) {
	r.mu.Lock()
	data, ok := r.sesiones[id]
	r.mu.Unlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	var s verificacion.Sesion
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Sesiones) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sesiones, id)
	return nil
}

func (r *Sesiones) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sesiones)
}

// ── Balances ──────────────────────────────────────────────────────────────────

type snapshot struct {
	version string
	b       balance.Balance
}

type Balances struct {
	mu       sync.Mutex
	balances map[uuid.UUID]snapshot
}

func NewBalances() *Balances {
	return &Balances{balances: map[uuid.UUID]snapshot{}}
}

func (c *Balances) Guardar(_ context.Context, turnoID uuid.UUID, version string, b balance.Balance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[turnoID] = snapshot{version: version, b: b}
	return nil
}

func (c *Balances) Obtener(_ context.Context, turnoID uuid.UUID, version string) (*balance.Balance, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.balances[turnoID]
	if !ok || s.version != version {
		return nil, repository.ErrNotFound
	}
	return &s.b, nil
}

// Ultimo returns the stored snapshot whatever price version it carries.
func (c *Balances) Ultimo(turnoID uuid.UUID) (*balance.Balance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.balances[turnoID]
	return &s.b, ok
}

func (c *Balances) Borrar(_ context.Context, turnoID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balances, turnoID)
	return nil
}

// ── Encolador ─────────────────────────────────────────────────────────────────

// Encolador records the shifts scheduled for a balance snapshot.
type Encolador struct {
	mu        sync.Mutex
	Encolados []uuid.UUID
}

func (e *Encolador) EnqueueBalanceTurno(_ context.Context, turnoID uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Encolados = append(e.Encolados, turnoID)
	return nil
}

// Precio is a shorthand for building price tables in tests.
func Precio(v string) decimal.Decimal { return decimal.RequireFromString(v) }
