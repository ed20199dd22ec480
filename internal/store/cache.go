// Package store implements the JSON-file backed cache and creator
// configuration stores. Both use atomic whole-file replacement and an
// advisory file lock, so a value is never observed partially written.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"
)

const lockTimeout = 5 * time.Second

// Entry is a cached value with its write time in epoch milliseconds.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// WrittenAt returns the entry's write time.
func (e Entry) WrittenAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Cache is a keyed persistent store of whole-value JSON entries.
// A corrupt cache file is treated as empty rather than an error: the
// engines recover by refetching.
type Cache struct {
	path string
	lock *FileLock
	mu   sync.RWMutex
	data map[string]Entry
}

// NewCache opens (or creates) the cache file at path.
func NewCache(path string) (*Cache, error) {
	c := &Cache{
		path: path,
		lock: NewFileLock(path),
	}

	if err := c.lock.Lock(lockTimeout); err != nil {
		return nil, err
	}

	if err := c.load(); err != nil {
		c.lock.Unlock()
		return nil, err
	}

	return c, nil
}

func (c *Cache) load() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.data = make(map[string]Entry)
			return nil
		}
		return &StoreError{Op: "read", Entity: "cache", Err: err}
	}

	c.data = make(map[string]Entry)
	if err := json.Unmarshal(raw, &c.data); err != nil {
		// Corrupt cache is a cache miss, not a failure.
		c.data = make(map[string]Entry)
	}
	return nil
}

func (c *Cache) save() error {
	writer, err := NewAtomicWriter(c.path)
	if err != nil {
		return &StoreError{Op: "write", Entity: "cache", Err: err}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c.data); err != nil {
		writer.Abort()
		return &StoreError{Op: "write", Entity: "cache", Err: err}
	}

	if err := writer.Commit(); err != nil {
		return &StoreError{Op: "write", Entity: "cache", Err: err}
	}
	return nil
}

// Get unmarshals the entry under key into v and returns its write time.
// A missing or undecodable entry is reported as not found.
func (c *Cache) Get(key string, v any) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[key]
	if !exists {
		return time.Time{}, false
	}
	if err := json.Unmarshal(entry.Data, v); err != nil {
		return time.Time{}, false
	}
	return entry.WrittenAt(), true
}

// Set stores v under key with the current timestamp, replacing any
// previous value whole.
func (c *Cache) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &StoreError{Op: "write", Entity: "cache", Key: key, Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = Entry{
		Data:      raw,
		Timestamp: time.Now().UnixMilli(),
	}
	return c.save()
}

// Clear removes the entry under key. Clearing a missing key is a no-op.
func (c *Cache) Clear(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.data[key]; !exists {
		return nil
	}
	delete(c.data, key)
	return c.save()
}

// Path returns the cache file location.
func (c *Cache) Path() string { return c.path }

// Close releases the file lock.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lock.Unlock()
}
