package repository

import (
	"context"
	"errors"
	"time"

	"grifopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("registro no encontrado")

type TurnoRepository interface {
	List(ctx context.Context) ([]model.Turno, error)
	ListByFecha(ctx context.Context, fecha string) ([]model.Turno, error)
	ListByIsla(ctx context.Context, islaID string) ([]model.Turno, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error)
	// Create assigns ID and Secuencia before inserting.
	Create(ctx context.Context, t *model.Turno) error
	// Update applies fn to the locked row and saves the result.
	Update(ctx context.Context, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error)
	UpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error)
	Close(ctx context.Context, id uuid.UUID, ahora time.Time) (*model.Turno, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

// ErrTurnoCerrado is returned by Close when the shift is no longer open.
var ErrTurnoCerrado = errors.New("el turno ya está cerrado")

type turnoRepo struct{ db *gorm.DB }

func NewTurnoRepository(db *gorm.DB) TurnoRepository { return &turnoRepo{db: db} }

func (r *turnoRepo) DB() *gorm.DB { return r.db }

func (r *turnoRepo) List(ctx context.Context) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).Order("secuencia ASC").Find(&turnos).Error
	return turnos, err
}

func (r *turnoRepo) ListByFecha(ctx context.Context, fecha string) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).Where("fecha = ?", fecha).Order("secuencia ASC").Find(&turnos).Error
	return turnos, err
}

func (r *turnoRepo) ListByIsla(ctx context.Context, islaID string) ([]model.Turno, error) {
	var turnos []model.Turno
	err := r.db.WithContext(ctx).Where("isla_id = ?", islaID).Order("secuencia ASC").Find(&turnos).Error
	return turnos, err
}

func (r *turnoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Turno, error) {
	var t model.Turno
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &t, err
}

func (r *turnoRepo) Create(ctx context.Context, t *model.Turno) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// PostgreSQL sequence keeps creation order strict across concurrent opens
		var seq int64
		if err := tx.Raw("SELECT nextval('turnos_secuencia_seq')").Scan(&seq).Error; err != nil {
			return err
		}
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.Secuencia = seq
		return tx.Create(t).Error
	})
}

func (r *turnoRepo) Update(ctx context.Context, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error) {
	var out *model.Turno
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := r.UpdateTx(ctx, tx, id, fn)
		out = t
		return err
	})
	return out, err
}

func (r *turnoRepo) UpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, fn func(*model.Turno) error) (*model.Turno, error) {
	var t model.Turno
	err := tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := fn(&t); err != nil {
		return nil, err
	}
	t.ID = id
	if err := tx.WithContext(ctx).Save(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *turnoRepo) Close(ctx context.Context, id uuid.UUID, ahora time.Time) (*model.Turno, error) {
	return r.Update(ctx, id, func(t *model.Turno) error {
		if t.Estado != model.EstadoAbierto {
			return ErrTurnoCerrado
		}
		t.Estado = model.EstadoCerrado
		t.ClosedAt = &ahora
		return nil
	})
}
