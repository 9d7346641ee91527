package repository

import (
	"context"
	"encoding/json"
	"time"

	"grifopos/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const precioTablaKey = "precios:tabla"

type PrecioRepository interface {
	// Tabla returns the full price table, served from Redis when cached.
	Tabla(ctx context.Context) (model.TablaPrecios, error)
	List(ctx context.Context) ([]model.Precio, error)
	Upsert(ctx context.Context, p *model.Precio) error
}

type precioRepo struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
}

// NewPrecioRepository builds a price repository. rdb may be nil, in which case
// every read goes to the database.
func NewPrecioRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) PrecioRepository {
	return &precioRepo{db: db, rdb: rdb, ttl: ttl}
}

func (r *precioRepo) Tabla(ctx context.Context) (model.TablaPrecios, error) {
	if r.rdb != nil {
		if cached, err := r.rdb.Get(ctx, precioTablaKey).Bytes(); err == nil {
			var tabla model.TablaPrecios
			if jsonErr := json.Unmarshal(cached, &tabla); jsonErr == nil {
				return tabla, nil
			}
		}
	}

	precios, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	tabla := make(model.TablaPrecios, len(precios))
	for _, p := range precios {
		tabla[p.Producto] = p.Valor
	}

	// populate cache; failures only cost a DB read next time
	if r.rdb != nil {
		if b, jsonErr := json.Marshal(tabla); jsonErr == nil {
			_ = r.rdb.Set(ctx, precioTablaKey, b, r.ttl).Err()
		}
	}
	return tabla, nil
}

func (r *precioRepo) List(ctx context.Context) ([]model.Precio, error) {
	var precios []model.Precio
	err := r.db.WithContext(ctx).Order("producto ASC").Find(&precios).Error
	return precios, err
}

func (r *precioRepo) Upsert(ctx context.Context, p *model.Precio) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "producto"}},
		DoUpdates: clause.AssignmentColumns([]string{"valor", "updated_at"}),
	}).Create(p).Error
	if err != nil {
		return err
	}
	if r.rdb != nil {
		if err := r.rdb.Del(ctx, precioTablaKey).Err(); err != nil {
			log.Warn().Err(err).Msg("precios: no se pudo invalidar la cache")
		}
	}
	return nil
}
