// Package cache stores raw completion responses on disk so repeat webhook
// deliveries for an unchanged merge request skip the provider call.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// entry is one cached completion response.
type entry struct {
	Key       string    `json:"key"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Cache is a file-based, TTL-bounded response cache. A disabled cache is
// valid and misses on every lookup.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// DefaultDir returns the platform cache directory for mergelens.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine cache directory: %w", err)
	}
	return filepath.Join(base, "mergelens"), nil
}

// New creates a cache rooted at dir. An empty dir disables caching.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled || dir == "" {
		return &Cache{enabled: false}, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
	}, nil
}

// Key derives the cache key for one review: same project, same MR, same
// diff content means the same completion.
func Key(projectID string, mrIID int, diff string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%s", projectID, mrIID, diff)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached completion for key, or ("", false) on a miss or
// expired entry.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return "", false
	}
	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false
	}
	if c.ttl > 0 && time.Since(e.CreatedAt) > c.ttl {
		os.Remove(c.entryPath(key))
		return "", false
	}
	return e.Content, true
}

// Put stores a completion response under key. Write failures are returned
// but callers treat them as advisory.
func (c *Cache) Put(key, content string) error {
	if !c.enabled {
		return nil
	}
	e := entry{Key: key, Content: content, CreatedAt: time.Now()}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}
