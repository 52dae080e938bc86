package embeddings

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/context"
)

// RedisStore reads embedding blobs from Redis, one key per item id.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (r *RedisStore) key(id int64) string {
	return r.keyPrefix + strconv.FormatInt(id, 10)
}

func (r *RedisStore) Exists(ctx context.Context, id int64) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("checking embedding %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *RedisStore) Fetch(ctx context.Context, id int64) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading embedding %d: %w", id, err)
	}
	return data, nil
}

func (r *RedisStore) Delete(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("deleting embedding %d: %w", id, err)
	}
	return nil
}

func (r *RedisStore) Type() string {
	return "redis"
}
