package csvstore

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	modTime time.Time
	size    int64
	value   any
}

// tableCache memoizes parsed tables per file path. An entry is reused while
// the file's modification time and size are unchanged; concurrent misses for
// the same path share one load.
type tableCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

func newTableCache() *tableCache {
	return &tableCache{entries: make(map[string]cacheEntry)}
}

func (c *tableCache) get(path string, load func(string) (any, error)) (any, error) {
	path = filepath.Clean(path)
	fi, err := os.Stat(path)
	if err != nil {
		c.invalidate(path)
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.entries[path]
	c.mu.Unlock()
	if ok && e.modTime.Equal(fi.ModTime()) && e.size == fi.Size() {
		return e.value, nil
	}

	v, err, _ := c.group.Do(path, func() (any, error) {
		val, err := load(path)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[path] = cacheEntry{modTime: fi.ModTime(), size: fi.Size(), value: val}
		c.mu.Unlock()
		return val, nil
	})
	return v, err
}

func (c *tableCache) invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, filepath.Clean(path))
	c.mu.Unlock()
}

func (c *tableCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
