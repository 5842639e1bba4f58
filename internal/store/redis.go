package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis wraps redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to redis with short timeouts.
func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
	return &Redis{Client: client}
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.Client == nil {
		return false
	}
	return r.Client.Ping(ctx).Err() == nil
}

const directoryKey = "campusattend:directory:verified"

// MirrorVerified records a user's verification status in the directory hash.
// The directory is a best-effort mirror of the value in Postgres; callers
// tolerate failure.
func (r *Redis) MirrorVerified(ctx context.Context, userID, status string) error {
	if r == nil || r.Client == nil {
		return redis.ErrClosed
	}
	return r.Client.HSet(ctx, directoryKey, userID, status).Err()
}

// LookupVerified reads a user's mirrored verification status. The empty
// string means the directory has no entry and the caller should fall back
// to Postgres.
func (r *Redis) LookupVerified(ctx context.Context, userID string) string {
	if r == nil || r.Client == nil {
		return ""
	}
	val, err := r.Client.HGet(ctx, directoryKey, userID).Result()
	if err != nil {
		return ""
	}
	return val
}
