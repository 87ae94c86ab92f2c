package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyFmt = "revoked:%s"

// Revoke marks the token id as unusable until exp, after which the token
// expires on its own and the key is dropped.
func Revoke(ctx context.Context, rdb *redis.Client, jti string, exp time.Time) error {
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, fmt.Sprintf(revokedKeyFmt, jti), 1, ttl).Err()
}

func IsRevoked(ctx context.Context, rdb *redis.Client, jti string) (bool, error) {
	err := rdb.Get(ctx, fmt.Sprintf(revokedKeyFmt, jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
