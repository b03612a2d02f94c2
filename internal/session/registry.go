package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionTTL bounds how long a binding survives without a refresh, so a
// crashed connection layer cannot leave sessions registered forever.
const sessionTTL = 2 * time.Minute

// Registry maps a user id to their live real-time session, if any. The
// connection layer binds on connect and unbinds on disconnect; the dispatch
// engine only ever looks up.
type Registry interface {
	Bind(ctx context.Context, userID, sessionID string) error
	Unbind(ctx context.Context, userID string) error
	Lookup(ctx context.Context, userID string) (sessionID string, ok bool, err error)
}

type RedisRegistry struct {
	redis *redis.Client
}

func NewRedisRegistry(redisClient *redis.Client) *RedisRegistry {
	return &RedisRegistry{
		redis: redisClient,
	}
}

func sessionKey(userID string) string {
	return fmt.Sprintf("session:%s", userID)
}

func (r *RedisRegistry) Bind(ctx context.Context, userID, sessionID string) error {
	return r.redis.Set(ctx, sessionKey(userID), sessionID, sessionTTL).Err()
}

func (r *RedisRegistry) Unbind(ctx context.Context, userID string) error {
	return r.redis.Del(ctx, sessionKey(userID)).Err()
}

func (r *RedisRegistry) Lookup(ctx context.Context, userID string) (string, bool, error) {
	sessionID, err := r.redis.Get(ctx, sessionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sessionID, true, nil
}
