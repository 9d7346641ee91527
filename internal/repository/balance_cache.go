package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"grifopos/internal/balance"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const balanceKeyPrefix = "balance:turno:"

// BalanceCache holds the balance snapshot of closed shifts. Each snapshot
// records the price table version it was computed with.
type BalanceCache interface {
	Guardar(ctx context.Context, turnoID uuid.UUID, preciosVersion string, b balance.Balance) error
	// Obtener returns ErrNotFound on a cache miss or when the snapshot was
	// computed with a different price table.
	Obtener(ctx context.Context, turnoID uuid.UUID, preciosVersion string) (*balance.Balance, error)
	Borrar(ctx context.Context, turnoID uuid.UUID) error
}

type snapshot struct {
	PreciosVersion string          `json:"precios_version"`
	Balance        balance.Balance `json:"balance"`
}

type balanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBalanceCache(rdb *redis.Client, ttl time.Duration) BalanceCache {
	return &balanceCache{rdb: rdb, ttl: ttl}
}

// BalanceKey is the Redis key of a shift's snapshot.
func BalanceKey(turnoID uuid.UUID) string { return balanceKeyPrefix + turnoID.String() }

func (c *balanceCache) Guardar(ctx context.Context, turnoID uuid.UUID, preciosVersion string, b balance.Balance) error {
	data, err := json.Marshal(snapshot{PreciosVersion: preciosVersion, Balance: b})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, BalanceKey(turnoID), data, c.ttl).Err()
}

func (c *balanceCache) Obtener(ctx context.Context, turnoID uuid.UUID, preciosVersion string) (*balance.Balance, error) {
	data, err := c.rdb.Get(ctx, BalanceKey(turnoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.PreciosVersion != preciosVersion {
		return nil, ErrNotFound
	}
	return &snap.Balance, nil
}

func (c *balanceCache) Borrar(ctx context.Context, turnoID uuid.UUID) error {
	return c.rdb.Del(ctx, BalanceKey(turnoID)).Err()
}
