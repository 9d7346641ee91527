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
	"grifopos/internal/verificacion"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VerificacionService interface {
	IniciarTurno(ctx context.Context, turnoID uuid.UUID) (*dto.SesionResponse, error)
	IniciarDia(ctx context.Context, fecha string) (*dto.SesionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error)

	Alternar(ctx context.Context, id, itemID uuid.UUID) (*dto.ToggleResponse, error)
	VerificarTodo(ctx context.Context, id uuid.UUID, req dto.VerificarTodoRequest) (*dto.VerificarTodoResponse, error)
	Corregir(ctx context.Context, id, itemID uuid.UUID, req dto.CorregirItemRequest) (*dto.SesionResponse, error)
	EditarMedidor(ctx context.Context, id uuid.UUID, req dto.EditarMedidorRequest) (*dto.SesionResponse, error)
	ReemplazarGastos(ctx context.Context, id uuid.UUID, req dto.EditarGastosRequest) (*dto.SesionResponse, error)
	ReemplazarEntregas(ctx context.Context, id uuid.UUID, req dto.EditarEntregasRequest) (*dto.SesionResponse, error)
	RegistrarEfectivo(ctx context.Context, id uuid.UUID, req dto.EfectivoRequest) (*dto.SesionResponse, error)
	ActualizarNotas(ctx context.Context, id uuid.UUID, req dto.NotasRequest) (*dto.SesionResponse, error)

	Guardar(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error)
	Descartar(ctx context.Context, id uuid.UUID) error
}

type verificacionService struct {
	turnos    repository.TurnoRepository
	reportes  repository.ReporteRepository
	precios   repository.PrecioRepository
	sesiones  repository.SesionRepository
	cache     repository.BalanceCache
	encolador BalanceEncolador
	opts      opciones
}

func NewVerificacionService(
	turnos repository.TurnoRepository,
	reportes repository.ReporteRepository,
	precios repository.PrecioRepository,
	sesiones repository.SesionRepository,
	cache repository.BalanceCache,
	encolador BalanceEncolador,
	opts ...Opcion,
) VerificacionService {
	return &verificacionService{
		turnos:    turnos,
		reportes:  reportes,
		precios:   precios,
		sesiones:  sesiones,
		cache:     cache,
		encolador: encolador,
		opts:      nuevasOpciones(opts),
	}
}

// ── Inicio ────────────────────────────────────────────────────────────────────

func (s *verificacionService) IniciarTurno(ctx context.Context, turnoID uuid.UUID) (*dto.SesionResponse, error) {
	t, err := s.turnos.FindByID(ctx, turnoID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTurnoNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	if t.Estado != model.EstadoCerrado {
		return nil, ErrTurnoNoCerrado
	}

	previo, err := opcional(s.reportes.FindByTurno(ctx, turnoID))
	if err != nil {
		return nil, err
	}
	ses := verificacion.NuevaSesionTurno(*t, previo, s.opts.ahora())
	return s.abrir(ctx, ses)
}

func (s *verificacionService) IniciarDia(ctx context.Context, fecha string) (*dto.SesionResponse, error) {
	turnos, err := s.turnos.ListByFecha(ctx, fecha)
	if err != nil {
		return nil, err
	}
	if len(turnos) == 0 {
		return nil, ErrDiaSinTurnos
	}
	for _, t := range turnos {
		if t.Estado != model.EstadoCerrado {
			return nil, ErrDiaConTurnosAbiertos
		}
	}

	previo, err := opcional(s.reportes.FindByFecha(ctx, fecha))
	if err != nil {
		return nil, err
	}
	ses := verificacion.NuevaSesionDia(fecha, turnos, previo, s.opts.ahora())
	return s.abrir(ctx, ses)
}

// opcional turns a not-found lookup into nil.
func opcional(r *model.ReporteVerificado, err error) (*model.ReporteVerificado, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return r, err
}

func (s *verificacionService) abrir(ctx context.Context, ses *verificacion.Sesion) (*dto.SesionResponse, error) {
	if err := s.sesiones.Save(ctx, ses); err != nil {
		return nil, err
	}
	log.Info().
		Str("sesion_id", ses.ID.String()).
		Str("tipo", ses.Tipo).
		Str("fecha", ses.Fecha).
		Int("turnos", len(ses.Turnos)).
		Bool("reverificacion", ses.ReporteID != nil).
		Msg("verificación iniciada")
	return s.respuesta(ctx, ses)
}

func (s *verificacionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error) {
	ses, err := s.sesion(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respuesta(ctx, ses)
}

func (s *verificacionService) sesion(ctx context.Context, id uuid.UUID) (*verificacion.Sesion, error) {
	ses, err := s.sesiones.Find(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSesionNoEncontrada
	}
	return ses, err
}

func (s *verificacionService) respuesta(ctx context.Context, ses *verificacion.Sesion) (*dto.SesionResponse, error) {
	precios, err := s.precios.Tabla(ctx)
	if err != nil {
		return nil, err
	}
	return sesionToResponse(ses, precios), nil
}

// ── Mutaciones ────────────────────────────────────────────────────────────────

// mutar loads the session, applies fn and stores it back.
func (s *verificacionService) mutar(ctx context.Context, id uuid.UUID, fn func(*verificacion.Sesion) error) (*dto.SesionResponse, error) {
	ses, err := s.sesion(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(ses); err != nil {
		return nil, traducir(err)
	}
	if err := s.sesiones.Save(ctx, ses); err != nil {
		return nil, err
	}
	return s.respuesta(ctx, ses)
}

// traducir maps working-copy errors onto the service sentinels.
func traducir(err error) error {
	switch {
	case errors.Is(err, verificacion.ErrItemNoEncontrado):
		return ErrItemNoEncontrado
	case errors.Is(err, verificacion.ErrMedidorNoExiste):
		return ErrMedidorNoExiste
	case errors.Is(err, verificacion.ErrCategoriaInvalida):
		return ErrCategoriaInvalida
	case errors.Is(err, verificacion.ErrTurnoFueraDeRango),
		errors.Is(err, verificacion.ErrGrupoNoExiste),
		errors.Is(err, verificacion.ErrMontoNegativo):
		return fmt.Errorf("%w: %v", ErrItemInvalido, err)
	}
	return err
}

func (s *verificacionService) Alternar(ctx context.Context, id, itemID uuid.UUID) (*dto.ToggleResponse, error) {
	var estado model.EstadoVerificacion
	resp, err := s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		var err error
		estado, err = ses.Alternar(itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.ToggleResponse{ItemID: itemID.String(), Verificado: estado, Sesion: resp}, nil
}

func (s *verificacionService) VerificarTodo(ctx context.Context, id uuid.UUID, req dto.VerificarTodoRequest) (*dto.VerificarTodoResponse, error) {
	var n int
	resp, err := s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		var err error
		n, err = ses.VerificarTodo(req.Categoria, req.TurnoIdx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.VerificarTodoResponse{Actualizados: n, Sesion: resp}, nil
}

func (s *verificacionService) Corregir(ctx context.Context, id, itemID uuid.UUID, req dto.CorregirItemRequest) (*dto.SesionResponse, error) {
	c := verificacion.Correccion{
		Metodo:         req.Metodo,
		Referencia:     req.Referencia,
		Factura:        req.Factura,
		Cliente:        req.Cliente,
		Monto:          montoOpcional(req.Monto),
		Galones:        montoOpcional(req.Galones),
		PrecioEspecial: montoOpcional(req.PrecioEspecial),
	}
	if req.Producto != nil {
		p := strings.ToUpper(strings.TrimSpace(*req.Producto))
		c.Producto = &p
	}
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		return ses.Corregir(itemID, c)
	})
}

// montoOpcional parses a provided raw amount leniently; nil stays nil.
func montoOpcional(raw *string) *decimal.Decimal {
	if raw == nil {
		return nil
	}
	v := balance.ParseMonto(*raw)
	return &v
}

func (s *verificacionService) EditarMedidor(ctx context.Context, id uuid.UUID, req dto.EditarMedidorRequest) (*dto.SesionResponse, error) {
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		return ses.EditarMedidor(req.TurnoIdx, req.Clave, balance.ParseOpcional(req.Fin))
	})
}

func (s *verificacionService) ReemplazarGastos(ctx context.Context, id uuid.UUID, req dto.EditarGastosRequest) (*dto.SesionResponse, error) {
	gastos := make([]model.Gasto, 0, len(req.Gastos))
	for _, g := range req.Gastos {
		gid := uuid.New()
		if g.ID != "" {
			parsed, err := uuid.Parse(g.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: gasto id %q", ErrItemInvalido, g.ID)
			}
			gid = parsed
		}
		gastos = append(gastos, model.Gasto{ID: gid, Detalle: g.Detalle, Monto: balance.ParseMonto(g.Monto)})
	}
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		return ses.ReemplazarGastos(req.TurnoIdx, gastos)
	})
}

func (s *verificacionService) ReemplazarEntregas(ctx context.Context, id uuid.UUID, req dto.EditarEntregasRequest) (*dto.SesionResponse, error) {
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		return ses.ReemplazarEntregas(req.TurnoIdx, req.Entregas)
	})
}

func (s *verificacionService) RegistrarEfectivo(ctx context.Context, id uuid.UUID, req dto.EfectivoRequest) (*dto.SesionResponse, error) {
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		return ses.RegistrarEfectivo(req.Grupo, balance.ParseMonto(req.Monto))
	})
}

func (s *verificacionService) ActualizarNotas(ctx context.Context, id uuid.UUID, req dto.NotasRequest) (*dto.SesionResponse, error) {
	return s.mutar(ctx, id, func(ses *verificacion.Sesion) error {
		ses.Notas = strings.TrimSpace(req.Notas)
		return nil
	})
}

// ── Guardar ───────────────────────────────────────────────────────────────────
// One transaction writes the corrected shifts and the report. The session is
// dropped only after commit, so a failed save can be retried.

func (s *verificacionService) Guardar(ctx context.Context, id uuid.UUID) (*dto.ReporteResponse, error) {
	ses, err := s.sesion(ctx, id)
	if err != nil {
		return nil, err
	}
	precios, err := s.precios.Tabla(ctx)
	if err != nil {
		return nil, err
	}

	// a report saved by another session since this one started is overwritten
	if ses.ReporteID == nil {
		var existente *model.ReporteVerificado
		if ses.Tipo == model.ReporteTurno {
			existente, err = opcional(s.reportes.FindByTurno(ctx, ses.Turnos[0].ID))
		} else {
			existente, err = opcional(s.reportes.FindByFecha(ctx, ses.Fecha))
		}
		if err != nil {
			return nil, err
		}
		if existente != nil {
			rid, en := existente.ID, existente.VerificadoEn
			ses.ReporteID, ses.VerificadoEn = &rid, &en
		}
	}

	rep := verificacion.ConstruirReporte(ses, precios, s.opts.ahora())
	escrituras := ses.Escrituras()

	err = runTx(ctx, s.turnos.DB(), func(tx *gorm.DB) error {
		for _, e := range escrituras {
			turnoID := ses.Turnos[e.TurnoIdx].ID
			if _, err := s.turnos.UpdateTx(ctx, tx, turnoID, func(t *model.Turno) error {
				e.Volcar(t)
				return nil
			}); err != nil {
				return fmt.Errorf("escribiendo turno %s: %w", turnoID, err)
			}
		}
		return s.reportes.SaveTx(ctx, tx, &rep)
	})
	if err != nil {
		return nil, err
	}

	metrics.ReportesGuardados.WithLabelValues(rep.Tipo).Inc()
	log.Info().
		Str("reporte_id", rep.ID.String()).
		Str("tipo", rep.Tipo).
		Str("fecha", rep.Fecha).
		Int("turnos_escritos", len(escrituras)).
		Bool("corregido", rep.Corregido).
		Msg("reporte verificado guardado")

	if err := s.sesiones.Delete(ctx, ses.ID); err != nil {
		log.Warn().Err(err).Str("sesion_id", ses.ID.String()).Msg("no se pudo borrar la sesión")
	}
	for _, e := range escrituras {
		s.refrescarBalance(ctx, ses.Turnos[e.TurnoIdx].ID)
	}
	return reporteToResponse(&rep), nil
}

// refrescarBalance drops the stale snapshot of a rewritten shift and
// schedules a new one.
func (s *verificacionService) refrescarBalance(ctx context.Context, turnoID uuid.UUID) {
	if s.cache != nil {
		if err := s.cache.Borrar(ctx, turnoID); err != nil {
			log.Warn().Err(err).Str("turno_id", turnoID.String()).Msg("no se pudo invalidar el balance")
		}
	}
	if s.encolador != nil {
		if err := s.encolador.EnqueueBalanceTurno(ctx, turnoID); err != nil {
			log.Warn().Err(err).Str("turno_id", turnoID.String()).Msg("no se pudo encolar el balance")
		}
	}
}

// Descartar drops the working copy. Stored shifts and reports are untouched.
func (s *verificacionService) Descartar(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sesion(ctx, id); err != nil {
		return err
	}
	return s.sesiones.Delete(ctx, id)
}
