package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/core/session"
)

const keyPrefix = "coachdesk:revoked:"

var nowFunc = time.Now // mockable

func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	if conf.Redis.Addr == "" {
		return nil, core.NewConfigError("REDIS_ADDR")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

type revoker struct {
	client redis.Cmdable
}

var _ session.Revoker = (*revoker)(nil)

// NewRevoker stores revoked token ids as keys expiring with the token.
func NewRevoker(client redis.Cmdable) session.Revoker {
	return &revoker{client: client}
}

func revokedKey(tokenID string) string {
	return keyPrefix + tokenID
}

func (r *revoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(nowFunc())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		return errors.Wrap(err, "revoking token")
	}
	return nil
}

func (r *revoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, errors.Wrap(err, "checking revoked token")
	}
	return n > 0, nil
}
