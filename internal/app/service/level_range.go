package service

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

var levelFilePattern = regexp.MustCompile(`^level_(\d+)_(\d+)\.pdf$`)

// LevelFileName is the name a PDF covering levels start..end is stored under.
func LevelFileName(start, end int) string {
	return fmt.Sprintf("level_%d_%d.pdf", start, end)
}

// MaxLevelEnd returns the largest <end> over files named level_<start>_<end>.pdf
// in dir, or 0 when there are none. Names that do not match are skipped.
func MaxLevelEnd(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("MaxLevelEnd %s: %w", dir, err)
	}
	maxEnd := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := levelFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		end, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if end > maxEnd {
			maxEnd = end
		}
	}
	return maxEnd, nil
}

// LevelRangeAllocator hands out contiguous, non-overlapping level ranges.
type LevelRangeAllocator interface {
	Allocate(ctx context.Context, pages int) (start, end int, err error)
}

// LocalLevelAllocator serializes allocation inside one process. It remembers
// the last range it returned, so a range is never handed out twice even if
// the caller has not renamed its file into the directory yet.
type LocalLevelAllocator struct {
	dir  string
	mu   sync.Mutex
	last int
}

func NewLocalLevelAllocator(dir string) *LocalLevelAllocator {
	return &LocalLevelAllocator{dir: dir}
}

func (a *LocalLevelAllocator) Allocate(_ context.Context, pages int) (int, int, error) {
	if pages <= 0 {
		return 0, 0, fmt.Errorf("allocate %d levels: page count must be positive", pages)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	floor, err := MaxLevelEnd(a.dir)
	if err != nil {
		return 0, 0, err
	}
	if a.last > floor {
		floor = a.last
	}
	start := floor + 1
	end := floor + pages
	a.last = end
	return start, end, nil
}

// allocateScript advances the counter to max(counter, floor) + pages in one
// step and returns the new end. Redis runs scripts atomically, so concurrent
// servers sharing the key never receive overlapping ranges.
var allocateScript = redis.NewScript(`
	local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
	local floor = tonumber(ARGV[1])
	if floor > cur then
		cur = floor
	end
	local nxt = cur + tonumber(ARGV[2])
	redis.call("SET", KEYS[1], nxt)
	return nxt
`)

// RedisLevelAllocator keeps the level counter in Redis. The directory scan is
// passed as a floor so files placed by hand are never overwritten.
type RedisLevelAllocator struct {
	rdb redis.Scripter
	key string
	dir string
}

func NewRedisLevelAllocator(rdb redis.Scripter, key, dir string) *RedisLevelAllocator {
	return &RedisLevelAllocator{rdb: rdb, key: key, dir: dir}
}

func (a *RedisLevelAllocator) Allocate(ctx context.Context, pages int) (int, int, error) {
	if pages <= 0 {
		return 0, 0, fmt.Errorf("allocate %d levels: page count must be positive", pages)
	}
	floor, err := MaxLevelEnd(a.dir)
	if err != nil {
		return 0, 0, err
	}
	end, err := allocateScript.Run(ctx, a.rdb, []string{a.key}, floor, pages).Int()
	if err != nil {
		return 0, 0, fmt.Errorf("allocate levels in redis: %w", err)
	}
	return end - pages + 1, end, nil
}
