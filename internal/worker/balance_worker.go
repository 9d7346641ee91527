package worker

// balance_worker.go
// Rebuilds the balance snapshot of a shift after close or after a verification
// rewrote it. The snapshot is what GET /v1/turnos/:id/balance serves for
// closed shifts.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"grifopos/internal/balance"
	"grifopos/internal/metrics"
	"grifopos/internal/model"
	"grifopos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// errPermanente marks failures that retrying cannot fix.
var errPermanente = errors.New("permanent job failure")

func reintentable(err error) bool { return !errors.Is(err, errPermanente) }

// BalanceWorker processes JobBalanceTurno jobs.
type BalanceWorker struct {
	turnos  repository.TurnoRepository
	precios repository.PrecioRepository
	cache   repository.BalanceCache
}

func NewBalanceWorker(turnos repository.TurnoRepository, precios repository.PrecioRepository, cache repository.BalanceCache) *BalanceWorker {
	return &BalanceWorker{turnos: turnos, precios: precios, cache: cache}
}

// Process computes and caches the balance of the shift named in payload.
func (w *BalanceWorker) Process(ctx context.Context, payload json.RawMessage) (err error) {
	defer func() {
		resultado := "ok"
		if err != nil {
			resultado = "error"
		}
		metrics.Jobs.WithLabelValues(JobBalanceTurno, resultado).Inc()
	}()

	var p BalanceJobPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("%w: payload invalido: %v", errPermanente, err)
	}
	id, err := uuid.Parse(p.TurnoID)
	if err != nil {
		return fmt.Errorf("%w: turno_id invalido %q", errPermanente, p.TurnoID)
	}

	turno, err := w.turnos.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: turno %s no existe", errPermanente, id)
	}
	if err != nil {
		return err
	}
	// open shifts are always balanced live
	if turno.Estado != model.EstadoCerrado {
		return fmt.Errorf("%w: turno %s sigue abierto", errPermanente, id)
	}
	tabla, err := w.precios.Tabla(ctx)
	if err != nil {
		return err
	}

	b := balance.CalcularTurno(*turno, tabla)
	if len(b.ProductosSinPrecio) > 0 {
		metrics.PreciosFaltantes.Add(float64(len(b.ProductosSinPrecio)))
		log.Warn().
			Str("turno_id", id.String()).
			Strs("productos", b.ProductosSinPrecio).
			Msg("balance: productos sin precio, se cuentan a 0")
	}
	metrics.CuadreTurnos.WithLabelValues(b.Estado()).Inc()

	if err := w.cache.Guardar(ctx, id, tabla.Version(), b); err != nil {
		return err
	}
	log.Info().
		Str("turno_id", id.String()).
		Str("estado", b.Estado()).
		Str("diferencia", b.Diferencia.StringFixed(2)).
		Str("precios_version", tabla.Version()).
		Msg("balance: snapshot guardado")
	return nil
}
