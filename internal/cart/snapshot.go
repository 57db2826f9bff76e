package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/agronegocio/agromercado-backend/pkg/redis"
	redislib "github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound signals the owner has no stored snapshot.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotStore persists serialized cart snapshots under a per-owner key.
type SnapshotStore interface {
	Save(ctx context.Context, owner string, payload []byte) error
	Load(ctx context.Context, owner string) ([]byte, error)
	Delete(ctx context.Context, owner string) error
}

type kvStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartSnapshotKey(owner string) string
}

type redisSnapshotStore struct {
	kv kvStore
}

// NewRedisSnapshotStore builds a snapshot store on top of the shared Redis client.
func NewRedisSnapshotStore(client *redisclient.Client) (SnapshotStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &redisSnapshotStore{kv: client}, nil
}

func (s *redisSnapshotStore) Save(ctx context.Context, owner string, payload []byte) error {
	return s.kv.Set(ctx, s.kv.CartSnapshotKey(owner), payload, 0)
}

func (s *redisSnapshotStore) Load(ctx context.Context, owner string) ([]byte, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartSnapshotKey(owner))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return []byte(raw), nil
}

func (s *redisSnapshotStore) Delete(ctx context.Context, owner string) error {
	return s.kv.Del(ctx, s.kv.CartSnapshotKey(owner))
}
