package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGet(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	defer m.Close()

	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "analysis:52977", []byte(`{"difficulty":"Easy"}`), 0))

	got, err := m.Get(ctx, "analysis:52977")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"difficulty":"Easy"}`), got)
}

func TestMemory_MissReturnsNil(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	defer m.Close()

	got, err := m.Get(context.Background(), "search:nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_Expiry(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must read as a miss before the sweep runs")
}

func TestMemory_Sweep(t *testing.T) {
	m := NewMemory(time.Minute, 10*time.Millisecond)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "short", []byte("v"), 5*time.Millisecond))
	require.NoError(t, m.Set(ctx, "long", []byte("v"), time.Minute))

	assert.Eventually(t, func() bool {
		return m.Len() == 1
	}, time.Second, 5*time.Millisecond, "janitor should evict the expired entry")
}

func TestMemory_Delete(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, m.Delete(ctx, "k"))

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemory_IndependentKeys(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	defer m.Close()

	ctx := context.Background()
	require.NoError(t, m.Set(ctx, SearchKeyPrefix+"chicken", []byte("a"), 0))
	require.NoError(t, m.Set(ctx, AnalysisKeyPrefix+"chicken", []byte("b"), 0))

	got, _ := m.Get(ctx, SearchKeyPrefix+"chicken")
	assert.Equal(t, []byte("a"), got)
	got, _ = m.Get(ctx, AnalysisKeyPrefix+"chicken")
	assert.Equal(t, []byte("b"), got)
}

func TestMemory_CloseIdempotent(t *testing.T) {
	m := NewMemory(time.Minute, time.Minute)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}
