package repository

import (
	"context"
	"errors"

	"grifopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReporteRepository interface {
	List(ctx context.Context, fecha string) ([]model.ReporteVerificado, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReporteVerificado, error)
	FindByTurno(ctx context.Context, turnoID uuid.UUID) (*model.ReporteVerificado, error)
	// FindByFecha returns the day-type report of fecha.
	FindByFecha(ctx context.Context, fecha string) (*model.ReporteVerificado, error)
	// SaveTx inserts or overwrites r inside tx. Reports are only written by a
	// verification save, always together with the shifts it corrects.
	SaveTx(ctx context.Context, tx *gorm.DB, r *model.ReporteVerificado) error
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) List(ctx context.Context, fecha string) ([]model.ReporteVerificado, error) {
	var reportes []model.ReporteVerificado
	q := r.db.WithContext(ctx)
	if fecha != "" {
		q = q.Where("fecha = ?", fecha)
	}
	err := q.Order("verificado_en DESC").Find(&reportes).Error
	return reportes, err
}

func (r *reporteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ReporteVerificado, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *reporteRepo) FindByTurno(ctx context.Context, turnoID uuid.UUID) (*model.ReporteVerificado, error) {
	return r.first(ctx, "tipo = ? AND turno_id = ?", model.ReporteTurno, turnoID)
}

func (r *reporteRepo) FindByFecha(ctx context.Context, fecha string) (*model.ReporteVerificado, error) {
	return r.first(ctx, "tipo = ? AND fecha = ?", model.ReporteDia, fecha)
}

func (r *reporteRepo) first(ctx context.Context, query string, args ...interface{}) (*model.ReporteVerificado, error) {
	var rep model.ReporteVerificado
	err := r.db.WithContext(ctx).Where(query, args...).First(&rep).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *reporteRepo) SaveTx(ctx context.Context, tx *gorm.DB, rep *model.ReporteVerificado) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	return tx.WithContext(ctx).Save(rep).Error
}
