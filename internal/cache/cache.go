// Package cache persists serialized analysis results between runs. Entries
// are keyed by a digest over the scanned tree and the options that shaped
// the analysis, so any change to file contents or settings misses cleanly
// instead of serving stale results.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/caliper-sh/caliper/pkg/source"
)

// Cache is a TTL-bounded file store. A disabled cache accepts every call
// and does nothing, so callers never branch on whether caching is on.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

type entry struct {
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New opens a cache rooted at dir, creating the directory if needed.
// Entries older than ttlHours are evicted on read.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
	}, nil
}

// DefaultDir returns the per-user cache location, falling back to the
// system temp directory when the user cache dir cannot be resolved.
func DefaultDir() string {
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "caliper")
	}
	return filepath.Join(os.TempDir(), "caliper-cache")
}

// Key digests a source tree plus any extra discriminators (analysis depth,
// scan limits, tool version) into a stable hex key. Trees store files in
// sorted path order, so the same content always produces the same key.
func Key(tree *source.Tree, extras ...string) string {
	h := blake3.New()
	for _, f := range tree.Files() {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write(f.Content)
		h.Write([]byte{0})
	}
	for _, extra := range extras {
		h.Write([]byte(extra))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Enabled reports whether the cache stores anything.
func (c *Cache) Enabled() bool { return c.enabled }

// Dir returns the cache directory, empty when disabled.
func (c *Cache) Dir() string { return c.dir }

// Get retrieves a cached payload. Expired entries are removed and reported
// as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false
	}

	if time.Since(e.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return e.Data, true
}

// Set stores a payload under key. Errors are returned but callers treat
// them as advisory; a failed write only costs the next run a cache miss.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}

	raw, err := json.Marshal(entry{
		Timestamp: time.Now(),
		Data:      data,
	})
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), raw, 0o600)
}

// Clear removes every entry and the cache directory itself.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath hashes the key into a filename so arbitrary key text never
// reaches the filesystem.
func (c *Cache) keyPath(key string) string {
	sum := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}

// Stats summarizes what the cache currently holds.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// Stats walks the cache directory and reports entry count, total size, and
// the age range of stored entries.
func (c *Cache) Stats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		mod := info.ModTime()
		if oldest.IsZero() || mod.Before(oldest) {
			oldest = mod
		}
		if newest.IsZero() || mod.After(newest) {
			newest = mod
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
