package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/sequel-go/internal/adapters/sqlite"
)

func TestLRUEviction(t *testing.T) {
	var evicted []string
	c := NewLRU(2, func(key string, _ int) { evicted = append(evicted, key) })

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", 3) // b is least recently used
	assert.Equal(t, []string{"b"}, evicted)

	_, ok = c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, 3, v)

	c.Set("c", 4) // replacing releases the old value
	assert.Equal(t, []string{"b", "c"}, evicted)

	c.Invalidate("a")
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []string{"b", "c", "a", "c"}, evicted)
}

func TestLRUStats(t *testing.T) {
	c := NewLRU[string](1, nil)
	c.Set("a", "x")
	c.Get("a")
	c.Get("missing")
	c.Set("b", "y")

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, 1, stats.MaxSize)
	assert.InDelta(t, 50.0, stats.HitRate, 0.001)
}

func TestStatements(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.DefaultConfig())
	require.NoError(t, err)
	defer db.Close()

	s := NewStatements(4)
	defer s.Clear()

	first, err := s.Prepare(ctx, db, "SELECT 1")
	require.NoError(t, err)
	second, err := s.Prepare(ctx, db, "SELECT 1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	var n int
	require.NoError(t, second.QueryRowContext(ctx).Scan(&n))
	assert.Equal(t, 1, n)

	_, err = s.Prepare(ctx, db, "SELECT FROM")
	assert.Error(t, err)
	assert.Equal(t, int64(1), s.Stats().Hits)
}
