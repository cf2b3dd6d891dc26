package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("%PDF"), 0o644))
}

func TestMaxLevelEnd(t *testing.T) {
	dir := t.TempDir()

	n, err := MaxLevelEnd(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)

	touch(t, dir, "level_1_5.pdf")
	touch(t, dir, "level_6_10.pdf")
	touch(t, dir, "level_abc.pdf")
	touch(t, dir, "notes.txt")
	touch(t, dir, "level_3_99.pdf.bak")

	n, err = MaxLevelEnd(dir)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}

func TestLocalLevelAllocator_ContinuesAfterExistingFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "level_1_5.pdf")
	touch(t, dir, "level_6_10.pdf")

	a := NewLocalLevelAllocator(dir)
	start, end, err := a.Allocate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 11, start)
	assert.Equal(t, 13, end)
	assert.Equal(t, "level_11_13.pdf", LevelFileName(start, end))

	_, _, err = a.Allocate(context.Background(), 0)
	assert.Error(t, err)
}

func TestLocalLevelAllocator_ConcurrentRangesDoNotOverlap(t *testing.T) {
	a := NewLocalLevelAllocator(t.TempDir())

	const workers = 20
	type span struct{ start, end int }
	spans := make([]span, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, e, err := a.Allocate(context.Background(), i%4+1)
			assert.NoError(t, err)
			spans[i] = span{s, e}
		}(i)
	}
	wg.Wait()

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	assert.Equal(t, 1, spans[0].start)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].end+1, spans[i].start, "ranges must be contiguous and disjoint")
	}
}

func TestRedisLevelAllocator(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	dir := t.TempDir()
	touch(t, dir, "level_1_5.pdf")
	touch(t, dir, "level_6_10.pdf")
	a := NewRedisLevelAllocator(rdb, "tangle:level_counter", dir)
	ctx := context.Background()

	start, end, err := a.Allocate(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 13}, []int{start, end})

	// The counter moves on even though level_11_13.pdf was never written.
	start, end, err = a.Allocate(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 15}, []int{start, end})
	v, err := mr.Get("tangle:level_counter")
	require.NoError(t, err)
	assert.Equal(t, "15", v)

	// A file added by hand past the counter raises the floor.
	touch(t, dir, "level_16_30.pdf")
	start, end, err = a.Allocate(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{31, 31}, []int{start, end})

	_, _, err = a.Allocate(ctx, 0)
	assert.Error(t, err)
}

func TestRedisLevelAllocator_SharedCounterDoesNotOverlap(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	// Two servers with their own clients share one counter key.
	newAllocator := func() *RedisLevelAllocator {
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { rdb.Close() })
		return NewRedisLevelAllocator(rdb, "tangle:level_counter", dir)
	}
	allocators := []*RedisLevelAllocator{newAllocator(), newAllocator()}

	const workers = 20
	type span struct{ start, end int }
	spans := make([]span, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, e, err := allocators[i%2].Allocate(context.Background(), i%4+1)
			assert.NoError(t, err)
			spans[i] = span{s, e}
		}(i)
	}
	wg.Wait()

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	assert.Equal(t, 1, spans[0].start)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].end+1, spans[i].start, "ranges must be contiguous and disjoint")
	}
}
