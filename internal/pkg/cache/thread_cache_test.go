package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type memoryCache struct {
	known map[int64]bool
}

func (m *memoryCache) Has(_ context.Context, id int64) (bool, error) { return m.known[id], nil }

func (m *memoryCache) Add(_ context.Context, ids ...int64) error {
	for _, id := range ids {
		m.known[id] = true
	}
	return nil
}

func TestWarm(t *testing.T) {
	c := &memoryCache{known: map[int64]bool{}}

	n, err := Warm(context.Background(), c, func(context.Context) ([]int64, error) {
		return []int64{3, 8}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, c.known[3])
	assert.True(t, c.known[8])
}

func TestWarm_LoadError(t *testing.T) {
	c := &memoryCache{known: map[int64]bool{}}

	_, err := Warm(context.Background(), c, func(context.Context) ([]int64, error) {
		return nil, errors.New("db down")
	})
	assert.Error(t, err)
	assert.Empty(t, c.known)
}

func TestRedisThreadCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, RedisConfig{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	c := NewRedisThreadCache(client, "test:threads")

	ok, err := c.Has(ctx, 11)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Add(ctx, 11, 12))
	require.NoError(t, c.Add(ctx))

	ok, err = c.Has(ctx, 11)
	require.NoError(t, err)
	assert.True(t, ok)
}
