package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a Redis storage pointing at it
func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	s := NewRedis(client)
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestRedis_Contract(t *testing.T) {
	s, _ := setupTestRedis(t)
	testStorageContract(t, s)
}

func TestRedis_SetHasNoTTL(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, s.Set(context.Background(), "@RocketShoes:cart", []byte(`[]`)))

	assert.True(t, mr.Exists("@RocketShoes:cart"))
	assert.Zero(t, mr.TTL("@RocketShoes:cart"))
}

func TestRedis_GetReadsRawValue(t *testing.T) {
	s, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart", `[{"id":2,"amount":4}]`))

	value, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":2,"amount":4}]`, string(value))
}

func TestRedis_ServerDown(t *testing.T) {
	s, mr := setupTestRedis(t)
	mr.Close()

	_, err := s.Get(context.Background(), "cart")
	require.ErrorContains(t, err, "redis get failed")
	assert.NotErrorIs(t, err, ErrNotFound)

	err = s.Set(context.Background(), "cart", []byte(`[]`))
	require.ErrorContains(t, err, "redis set failed")
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	s, err := ConnectRedis(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "k", []byte("v")))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), addr, "", 0)
	require.ErrorContains(t, err, "redis ping failed")
}
