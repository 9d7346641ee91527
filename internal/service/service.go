package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Errores de negocio. Handlers map them to 4xx responses with errors.Is.
var (
	ErrTurnoNoEncontrado    = errors.New("turno no encontrado")
	ErrReporteNoEncontrado  = errors.New("reporte no encontrado")
	ErrSesionNoEncontrada   = errors.New("sesión de verificación no encontrada o expirada")
	ErrIslaNoExiste         = errors.New("la isla no existe")
	ErrIslaConTurnoAbierto  = errors.New("la isla ya tiene un turno abierto")
	ErrTurnoDuplicado       = errors.New("ya existe ese turno para la isla y fecha")
	ErrDiaCompleto          = errors.New("la isla ya tiene todos los turnos del día")
	ErrTurnoNoAbierto       = errors.New("el turno no está abierto")
	ErrTurnoNoCerrado       = errors.New("solo se verifican turnos cerrados")
	ErrDiaSinTurnos         = errors.New("no hay turnos en la fecha")
	ErrDiaConTurnosAbiertos = errors.New("hay turnos abiertos en la fecha")
	ErrCategoriaInvalida    = errors.New("categoría inválida")
	ErrItemInvalido         = errors.New("item inválido")
	ErrItemNoEncontrado     = errors.New("item no encontrado")
	ErrMedidorNoExiste      = errors.New("el surtidor no existe en el turno")
	ErrBalonSinGLP          = errors.New("solo las islas GLP venden balones")
)

// BalanceEncolador schedules the balance snapshot of a shift.
// *worker.Dispatcher satisfies it.
type BalanceEncolador interface {
	EnqueueBalanceTurno(ctx context.Context, turnoID uuid.UUID) error
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// Opcion configures optional collaborators of the services.
type Opcion func(*opciones)

type opciones struct {
	ahora func() time.Time
}

// ConReloj replaces time.Now, used by tests for VerificadoEn and ClosedAt.
func ConReloj(f func() time.Time) Opcion {
	return func(o *opciones) { o.ahora = f }
}

func nuevasOpciones(opts []Opcion) opciones {
	o := opciones{ahora: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
