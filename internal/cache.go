package internal

import (
	"crypto/sha1"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pyverse/pydown/internal/types"
)

// CacheEntry is one transpiled output, keyed by the content hash of its
// input and configuration.
type CacheEntry struct {
	Output       []byte
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache avoids re-transpiling unchanged source units. Keys are content
// hashes, so a file moved or touched without modification still hits, and
// any config change misses. The index persists as a gob file in CacheDir.
type Cache struct {
	CacheDir string
	entries  map[string]CacheEntry
	mutex    sync.RWMutex
}

const cacheIndexFile = "transpile_cache.gob"

// NewCache opens (or creates) the cache directory and loads the index.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &Cache{
		CacheDir: cacheDir,
		entries:  make(map[string]CacheEntry),
	}
	if err := cache.load(); err != nil {
		return nil, fmt.Errorf("failed to load cache: %w", err)
	}
	return cache, nil
}

// Key builds the cache key for a source unit: the sha1 of the input bytes
// and the build configuration fingerprint.
func Key(input []byte, cfg types.BuildConfig) string {
	h := sha1.New()
	h.Write(input)
	h.Write([]byte(cfg.Fingerprint()))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *Cache) load() error {
	file, err := os.Open(filepath.Join(c.CacheDir, cacheIndexFile))
	if os.IsNotExist(err) {
		return nil // no cache yet, fine
	}
	if err != nil {
		return fmt.Errorf("failed to open cache index: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&c.entries); err != nil {
		return fmt.Errorf("failed to decode cache index: %w", err)
	}
	return nil
}

func (c *Cache) save() error {
	file, err := os.Create(filepath.Join(c.CacheDir, cacheIndexFile))
	if err != nil {
		return fmt.Errorf("failed to create cache index: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache index: %w", err)
	}
	return nil
}

// Set stores a transpiled output under its key and persists the index.
func (c *Cache) Set(key string, output []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = CacheEntry{
		Output:       output,
		CreatedAt:    time.Now(),
		LastAccessed: time.Now(),
	}
	return c.save()
}

// Get returns the cached output for a key, if present.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}
	entry.LastAccessed = time.Now()
	c.entries[key] = entry
	return entry.Output, true
}

// InvalidateAll drops every entry.
func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
	_ = c.save() // manual operation, best effort
}
