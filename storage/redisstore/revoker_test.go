package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/coachdesk/core"
	"github.com/trezcool/coachdesk/testutil"
)

func TestOpen_requiresAddr(t *testing.T) {
	_, err := Open(context.Background(), testutil.NewConfig())
	assert.True(t, core.IsConfigError(err))
}

func TestRevoker(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	conf := testutil.NewConfig()
	conf.Redis.Addr = addr

	ctx := context.Background()
	client, err := Open(ctx, conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	rev := NewRevoker(client)
	jti := core.NewID()
	t.Cleanup(func() { client.Del(ctx, revokedKey(jti)) })

	revoked, err := rev.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, rev.Revoke(ctx, jti, time.Now().Add(time.Minute)))
	revoked, err = rev.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, revokedKey(jti)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	// already expired tokens are not stored
	old := core.NewID()
	require.NoError(t, rev.Revoke(ctx, old, time.Now().Add(-time.Minute)))
	revoked, err = rev.IsRevoked(ctx, old)
	require.NoError(t, err)
	assert.False(t, revoked)
}
