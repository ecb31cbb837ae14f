package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNameCache(t *testing.T) (*miniredis.Miniredis, *NameCacheRepository) {
	t.Helper()

	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return s, NewNameCacheRepository(client, time.Hour)
}

func TestNameCacheRepository_SetGet(t *testing.T) {
	s, repo := setupNameCache(t)
	ctx := context.Background()
	addr := common.HexToAddress("0xCD2a3d9F938E13CD947Ec05AbC7FE734Df8DD826")

	_, ok, err := repo.Get(ctx, "vitalik.eth")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "vitalik.eth", addr))
	assert.True(t, s.Exists("ens:vitalik.eth"))

	stored, err := s.Get("ens:vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, addr.Hex(), stored)

	got, ok, err := repo.Get(ctx, "Vitalik.ETH")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, addr, got)
}

func TestNameCacheRepository_Delete(t *testing.T) {
	s, repo := setupNameCache(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "cow.eth", common.HexToAddress("0x01")))
	require.NoError(t, repo.Delete(ctx, "cow.eth"))
	assert.False(t, s.Exists("ens:cow.eth"))

	_, ok, err := repo.Get(ctx, "cow.eth")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNameCacheRepository_InvalidEntry(t *testing.T) {
	s, repo := setupNameCache(t)
	ctx := context.Background()

	require.NoError(t, s.Set("ens:bad.eth", "not-an-address"))

	_, ok, err := repo.Get(ctx, "bad.eth")
	assert.Error(t, err)
	assert.False(t, ok)
}
