package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// flagTTL keeps day-scoped flags around long enough to cover their business
// day plus a grace window, then lets Redis discard them.
const flagTTL = 72 * time.Hour

// FlagStore persists day-scoped operational flags (alert dismissals, the
// evaluation-register opening marker) as Redis keys with a TTL.
type FlagStore struct {
	rdb *redis.Client
}

func NewFlagStore(rdb *redis.Client) *FlagStore {
	return &FlagStore{rdb: rdb}
}

// Marcar sets the flag. Idempotent.
func (f *FlagStore) Marcar(ctx context.Context, chave string) error {
	return f.rdb.Set(ctx, chave, "1", flagTTL).Err()
}

// Marcada reports whether the flag is set.
func (f *FlagStore) Marcada(ctx context.Context, chave string) (bool, error) {
	n, err := f.rdb.Exists(ctx, chave).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
