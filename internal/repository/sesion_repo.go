package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"grifopos/internal/verificacion"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sesionKeyPrefix = "verificacion:sesion:"

// SesionRepository keeps verification working copies. An abandoned session
// expires after the TTL and never reaches the stored shifts.
type SesionRepository interface {
	Save(ctx context.Context, s *verificacion.Sesion) error
	Find(ctx context.Context, id uuid.UUID) (*verificacion.Sesion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sesionRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSesionRepository(rdb *redis.Client, ttl time.Duration) SesionRepository {
	return &sesionRepo{rdb: rdb, ttl: ttl}
}

func sesionKey(id uuid.UUID) string { return sesionKeyPrefix + id.String() }

// Save writes the session and refreshes its TTL.
func (r *sesionRepo) Save(ctx context.Context, s *verificacion.Sesion) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, sesionKey(s.ID), data, r.ttl).Err()
}

func (r *sesionRepo) Find(ctx context.Context, id uuid.UUID) (*verificacion.Sesion, error) {
	data, err := r.rdb.Get(ctx, sesionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s verificacion.Sesion
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sesionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, sesionKey(id)).Err()
}
