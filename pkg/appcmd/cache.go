package appcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// HashCache remembers the last pushed scope hash so an unchanged scope can
// skip talking to Discord entirely. Implementations must be safe for
// concurrent use; a missing key yields ("", nil).
type HashCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryCache is a process-local HashCache. State is lost on restart, which
// only costs one extra reconcile pass per scope.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get returns the cached value for key, or "".
func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.entries[key], nil
}

// Set stores the value for key.
func (c *MemoryCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value

	return nil
}

// FileCache persists hashes as a single JSON file under a state directory,
// surviving restarts.
type FileCache struct {
	path string
	mu   sync.Mutex
}

// NewFileCache returns a cache backed by <dir>/command_hashes.json.
func NewFileCache(dir string) *FileCache {
	return &FileCache{path: filepath.Join(dir, "command_hashes.json")}
}

// Get returns the persisted value for key, or "". A missing or unreadable
// file reads as empty.
func (c *FileCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.load()[key], nil
}

// Set stores the value for key and rewrites the backing file.
func (c *FileCache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	entries[key] = value

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding hash cache: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing hash cache: %w", err)
	}

	return nil
}

func (c *FileCache) load() map[string]string {
	entries := make(map[string]string)
	if data, err := os.ReadFile(c.path); err == nil {
		_ = json.Unmarshal(data, &entries)
	}

	return entries
}
