package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grifopos/internal/balance"
	"grifopos/internal/dto"
	"grifopos/internal/metrics"
	"grifopos/internal/model"
	"grifopos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type TurnoService interface {
	Abrir(ctx context.Context, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error)
	RegistrarMedidores(ctx context.Context, id uuid.UUID, req dto.MedidoresRequest) (*dto.TurnoResponse, error)
	AgregarItem(ctx context.Context, id uuid.UUID, categoria string, req dto.ItemRequest) (*dto.TurnoResponse, error)
	EliminarItem(ctx context.Context, id uuid.UUID, categoria string, itemID uuid.UUID) (*dto.TurnoResponse, error)
	ReemplazarEntregas(ctx context.Context, id uuid.UUID, req dto.EntregasRequest) (*dto.TurnoResponse, error)
	Cerrar(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error)
	Listar(ctx context.Context, filter dto.TurnoFilter) ([]dto.TurnoResponse, error)
	Balance(ctx context.Context, id uuid.UUID) (*dto.BalanceResponse, error)
}

type turnoService struct {
	repo      repository.TurnoRepository
	precios   repository.PrecioRepository
	cache     repository.BalanceCache
	topologia model.Topologia
	encolador BalanceEncolador
	opts      opciones
}

func NewTurnoService(
	repo repository.TurnoRepository,
	precios repository.PrecioRepository,
	cache repository.BalanceCache,
	topologia model.Topologia,
	encolador BalanceEncolador,
	opts ...Opcion,
) TurnoService {
	return &turnoService{
		repo:      repo,
		precios:   precios,
		cache:     cache,
		topologia: topologia,
		encolador: encolador,
		opts:      nuevasOpciones(opts),
	}
}

// ── Abrir ─────────────────────────────────────────────────────────────────────
// Rejects unknown islands, a second open shift on the island, a taken slot
// (island, date, shift name) and a full day. Meters start where the island's
// previous shift ended.

func (s *turnoService) Abrir(ctx context.Context, req dto.AbrirTurnoRequest) (*dto.TurnoResponse, error) {
	isla, ok := s.topologia.Buscar(req.IslaID)
	if !ok {
		return nil, ErrIslaNoExiste
	}

	historial, err := s.repo.ListByIsla(ctx, isla.ID)
	if err != nil {
		return nil, err
	}
	ocupados := map[string]bool{}
	for _, t := range historial {
		if t.Estado == model.EstadoAbierto {
			return nil, ErrIslaConTurnoAbierto
		}
		if t.Fecha == req.Fecha {
			ocupados[t.NombreTurno] = true
		}
	}
	completos := 0
	for _, n := range model.NombresTurno {
		if ocupados[n] {
			completos++
		}
	}
	if completos == len(model.NombresTurno) {
		return nil, ErrDiaCompleto
	}
	if ocupados[req.NombreTurno] {
		return nil, ErrTurnoDuplicado
	}

	medidores, hay := balance.SembrarMedidores(isla, balance.MedidoresArrastre(historial, isla.ID))
	turno := &model.Turno{
		Trabajador:  strings.TrimSpace(req.Trabajador),
		IslaID:      isla.ID,
		Fecha:       req.Fecha,
		NombreTurno: req.NombreTurno,
		Estado:      model.EstadoAbierto,
		Medidores:   medidores,
		HayArrastre: hay,
		CreatedAt:   s.opts.ahora(),
	}
	if err := s.repo.Create(ctx, turno); err != nil {
		// the unique indexes catch a concurrent open of the same slot
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTurnoDuplicado
		}
		return nil, err
	}

	metrics.TurnosAbiertos.Inc()
	log.Info().
		Str("turno_id", turno.ID.String()).
		Str("isla_id", turno.IslaID).
		Str("fecha", turno.Fecha).
		Str("nombre_turno", turno.NombreTurno).
		Bool("arrastre", hay).
		Msg("turno abierto")
	return turnoToResponse(turno), nil
}

// ── Edición del turno abierto ────────────────────────────────────────────────

// actualizarAbierto locks the shift, checks it is still open and applies fn.
func (s *turnoService) actualizarAbierto(ctx context.Context, id uuid.UUID, fn func(*model.Turno) error) (*dto.TurnoResponse, error) {
	t, err := s.repo.Update(ctx, id, func(t *model.Turno) error {
		if t.Estado != model.EstadoAbierto {
			return ErrTurnoNoAbierto
		}
		return fn(t)
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTurnoNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return turnoToResponse(t), nil
}

// RegistrarMedidores records end readings. Start readings never change.
func (s *turnoService) RegistrarMedidores(ctx context.Context, id uuid.UUID, req dto.MedidoresRequest) (*dto.TurnoResponse, error) {
	return s.actualizarAbierto(ctx, id, func(t *model.Turno) error {
		for clave := range req.Medidores {
			if _, ok := t.Medidores[clave]; !ok {
				return fmt.Errorf("%w: %s", ErrMedidorNoExiste, clave)
			}
		}
		for clave, raw := range req.Medidores {
			m := t.Medidores[clave]
			m.Fin = balance.ParseOpcional(raw)
			t.Medidores[clave] = m
		}
		return nil
	})
}

func (s *turnoService) AgregarItem(ctx context.Context, id uuid.UUID, categoria string, req dto.ItemRequest) (*dto.TurnoResponse, error) {
	return s.actualizarAbierto(ctx, id, func(t *model.Turno) error {
		return s.agregar(t, categoria, req)
	})
}

func (s *turnoService) agregar(t *model.Turno, categoria string, req dto.ItemRequest) error {
	producto := strings.ToUpper(strings.TrimSpace(req.Producto))
	switch categoria {
	case model.CategoriaPago:
		if req.Metodo == "" {
			return fmt.Errorf("%w: metodo requerido", ErrItemInvalido)
		}
		t.Pagos = append(t.Pagos, model.Pago{
			ID: uuid.New(), Metodo: req.Metodo, Referencia: req.Referencia, Factura: req.Factura,
			Monto: balance.ParseMonto(req.Monto),
		})
	case model.CategoriaCredito:
		if producto == "" {
			return fmt.Errorf("%w: producto requerido", ErrItemInvalido)
		}
		t.Creditos = append(t.Creditos, model.Credito{
			ID: uuid.New(), Producto: producto, Cliente: req.Cliente, Galones: balance.ParseMonto(req.Galones),
		})
	case model.CategoriaPromocion:
		if producto == "" {
			return fmt.Errorf("%w: producto requerido", ErrItemInvalido)
		}
		t.Promociones = append(t.Promociones, model.Promocion{
			ID: uuid.New(), Producto: producto, Cliente: req.Cliente, Galones: balance.ParseMonto(req.Galones),
		})
	case model.CategoriaDescuento:
		if producto == "" {
			return fmt.Errorf("%w: producto requerido", ErrItemInvalido)
		}
		t.Descuentos = append(t.Descuentos, model.Descuento{
			ID: uuid.New(), Producto: producto, Cliente: req.Cliente, Galones: balance.ParseMonto(req.Galones),
			PrecioEspecial: balance.ParseMonto(req.PrecioEspecial),
		})
	case model.CategoriaGasto:
		if strings.TrimSpace(req.Detalle) == "" {
			return fmt.Errorf("%w: detalle requerido", ErrItemInvalido)
		}
		t.Gastos = append(t.Gastos, model.Gasto{ID: uuid.New(), Detalle: req.Detalle, Monto: balance.ParseMonto(req.Monto)})
	case model.CategoriaAdelanto:
		t.Adelantos = append(t.Adelantos, model.Adelanto{ID: uuid.New(), Cliente: req.Cliente, Monto: balance.ParseMonto(req.Monto)})
	case model.CategoriaBalon:
		isla, ok := s.topologia.Buscar(t.IslaID)
		if !ok || !isla.EsGLP {
			return ErrBalonSinGLP
		}
		if strings.TrimSpace(req.Tamano) == "" {
			return fmt.Errorf("%w: tamaño requerido", ErrItemInvalido)
		}
		t.Balones = append(t.Balones, model.Balon{
			ID: uuid.New(), Tamano: req.Tamano, Cantidad: req.Cantidad, Precio: balance.ParseMonto(req.Precio),
		})
	default:
		return ErrCategoriaInvalida
	}
	return nil
}

func (s *turnoService) EliminarItem(ctx context.Context, id uuid.UUID, categoria string, itemID uuid.UUID) (*dto.TurnoResponse, error) {
	return s.actualizarAbierto(ctx, id, func(t *model.Turno) error {
		var ok bool
		switch categoria {
		case model.CategoriaPago:
			t.Pagos, ok = quitar(t.Pagos, itemID, func(p model.Pago) uuid.UUID { return p.ID })
		case model.CategoriaCredito:
			t.Creditos, ok = quitar(t.Creditos, itemID, func(c model.Credito) uuid.UUID { return c.ID })
		case model.CategoriaPromocion:
			t.Promociones, ok = quitar(t.Promociones, itemID, func(p model.Promocion) uuid.UUID { return p.ID })
		case model.CategoriaDescuento:
			t.Descuentos, ok = quitar(t.Descuentos, itemID, func(d model.Descuento) uuid.UUID { return d.ID })
		case model.CategoriaGasto:
			t.Gastos, ok = quitar(t.Gastos, itemID, func(g model.Gasto) uuid.UUID { return g.ID })
		case model.CategoriaAdelanto:
			t.Adelantos, ok = quitar(t.Adelantos, itemID, func(a model.Adelanto) uuid.UUID { return a.ID })
		case model.CategoriaBalon:
			t.Balones, ok = quitar(t.Balones, itemID, func(b model.Balon) uuid.UUID { return b.ID })
		default:
			return ErrCategoriaInvalida
		}
		if !ok {
			return ErrItemNoEncontrado
		}
		return nil
	})
}

// quitar removes the element with the given id, keeping order.
func quitar[T any](l model.Lista[T], id uuid.UUID, idDe func(T) uuid.UUID) (model.Lista[T], bool) {
	for i, v := range l {
		if idDe(v) == id {
			out := append(model.Lista[T]{}, l[:i]...)
			return append(out, l[i+1:]...), true
		}
	}
	return l, false
}

// ReemplazarEntregas replaces the raw cash hand-ins of the shift.
func (s *turnoService) ReemplazarEntregas(ctx context.Context, id uuid.UUID, req dto.EntregasRequest) (*dto.TurnoResponse, error) {
	return s.actualizarAbierto(ctx, id, func(t *model.Turno) error {
		t.Entregas = append(model.Lista[string]{}, req.Entregas...)
		return nil
	})
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// abierto → cerrado happens once. The balance snapshot is built async.

func (s *turnoService) Cerrar(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error) {
	t, err := s.repo.Close(ctx, id, s.opts.ahora())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrTurnoNoEncontrado
	case errors.Is(err, repository.ErrTurnoCerrado):
		return nil, ErrTurnoNoAbierto
	case err != nil:
		return nil, err
	}

	metrics.TurnosCerrados.Inc()
	log.Info().Str("turno_id", id.String()).Str("isla_id", t.IslaID).Msg("turno cerrado")

	// best-effort: Balance computes live when the snapshot is missing
	if s.encolador != nil {
		if err := s.encolador.EnqueueBalanceTurno(ctx, id); err != nil {
			log.Warn().Err(err).Str("turno_id", id.String()).Msg("no se pudo encolar el balance")
		}
	}
	return turnoToResponse(t), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *turnoService) Obtener(ctx context.Context, id uuid.UUID) (*dto.TurnoResponse, error) {
	t, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	return turnoToResponse(t), nil
}

func (s *turnoService) buscar(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	t, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTurnoNoEncontrado
	}
	return t, err
}

func (s *turnoService) Listar(ctx context.Context, filter dto.TurnoFilter) ([]dto.TurnoResponse, error) {
	var (
		turnos []model.Turno
		err    error
	)
	switch {
	case filter.Fecha != "":
		turnos, err = s.repo.ListByFecha(ctx, filter.Fecha)
	case filter.IslaID != "":
		turnos, err = s.repo.ListByIsla(ctx, filter.IslaID)
	default:
		turnos, err = s.repo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.TurnoResponse, 0, len(turnos))
	for i := range turnos {
		t := &turnos[i]
		if filter.IslaID != "" && t.IslaID != filter.IslaID {
			continue
		}
		if filter.Estado != "" && t.Estado != filter.Estado {
			continue
		}
		out = append(out, *turnoToResponse(t))
	}
	return out, nil
}

// Balance returns the shift balance. Closed shifts are served from the
// snapshot cache when it was computed with the current price table.
func (s *turnoService) Balance(ctx context.Context, id uuid.UUID) (*dto.BalanceResponse, error) {
	t, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	tabla, err := s.precios.Tabla(ctx)
	if err != nil {
		return nil, err
	}
	cerrado := t.Estado == model.EstadoCerrado
	version := tabla.Version()

	if cerrado && s.cache != nil {
		if b, err := s.cache.Obtener(ctx, id, version); err == nil {
			resp := balanceToResponse(id.String(), *b)
			return &resp, nil
		}
	}

	b := balance.CalcularTurno(*t, tabla)
	avisarSinPrecio(id, b)

	if cerrado && s.cache != nil {
		if err := s.cache.Guardar(ctx, id, version, b); err != nil {
			log.Warn().Err(err).Str("turno_id", id.String()).Msg("no se pudo cachear el balance")
		}
	}
	resp := balanceToResponse(id.String(), b)
	return &resp, nil
}

func avisarSinPrecio(turnoID uuid.UUID, b balance.Balance) {
	if len(b.ProductosSinPrecio) == 0 {
		return
	}
	log.Warn().
		Str("turno_id", turnoID.String()).
		Strs("productos", b.ProductosSinPrecio).
		Msg("productos sin precio, se cuentan a 0")
}
