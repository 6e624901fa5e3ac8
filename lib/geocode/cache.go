package geocode

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Cache persists lookup results across runs. Entries never expire,
// a failed lookup is cached as an empty Result so it is not retried.
type Cache interface {
	Get(query string) (Result, bool)
	Put(query string, res Result) error
}

// FileCache is a write-through JSON file cache. It is loaded once and
// rewritten after every Put, so a crash loses at most one pending entry.
// Not safe for concurrent use; the normalizer is single-threaded.
type FileCache struct {
	path    string
	entries map[string]Result
}

// LoadFileCache reads the cache at path. A missing or unparsable file
// is treated as an empty cache.
func LoadFileCache(path string) *FileCache {
	entries := map[string]Result{}
	contents, err := os.ReadFile(path)
	if err == nil {
		err = json.Unmarshal(contents, &entries)
		if err != nil {
			slog.Warn("discarding unparsable geocode cache", "path", path, "err", err)
			entries = map[string]Result{}
		}
	}
	return &FileCache{path: path, entries: entries}
}

func (c *FileCache) Get(query string) (Result, bool) {
	res, ok := c.entries[query]
	return res, ok
}

func (c *FileCache) Put(query string, res Result) error {
	c.entries[query] = res
	serialized, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, serialized, 0644)
}

// MemoryCache is an in-memory Cache for tests.
type MemoryCache map[string]Result

func (c MemoryCache) Get(query string) (Result, bool) {
	res, ok := c[query]
	return res, ok
}

func (c MemoryCache) Put(query string, res Result) error {
	c[query] = res
	return nil
}
