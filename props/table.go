package props

import (
	"maps"
	"sync"
	"time"
)

// Table is a mutable property table. Its identity is stable for the life of
// the process: loaders refresh contents in place and holders of a *Table see
// the new values without going back to the cache.
type Table struct {
	mu       sync.RWMutex
	values   map[string]string
	loadedAt time.Time
}

// NewTable creates an empty table that has never been loaded.
func NewTable() *Table {
	return &Table{values: map[string]string{}}
}

// Get reports the value for key and whether it is present.
// A present empty string is distinct from a missing key.
func (t *Table) Get(key string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.values[key]
	return v, ok
}

// GetOr returns the value for key, or def when the key is missing.
func (t *Table) GetOr(key, def string) string {
	if v, ok := t.Get(key); ok {
		return v
	}
	return def
}

func (t *Table) Set(key, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[key] = value
}

func (t *Table) Delete(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.values, key)
}

func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Snapshot returns a copy of the current contents.
func (t *Table) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return maps.Clone(t.values)
}

// Replace swaps the contents for a copy of values and stamps the load time.
func (t *Table) Replace(values map[string]string) {
	fresh := make(map[string]string, len(values))
	maps.Copy(fresh, values)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = fresh
	t.loadedAt = time.Now()
}

// LoadedAt returns when Replace last ran, zero if never.
func (t *Table) LoadedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loadedAt
}

func (t *Table) Loaded() bool {
	return !t.LoadedAt().IsZero()
}

// Stale reports whether the table was never loaded or is older than maxAge.
// A non-positive maxAge never expires a loaded table.
func (t *Table) Stale(maxAge time.Duration) bool {
	loadedAt := t.LoadedAt()
	if loadedAt.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return time.Since(loadedAt) > maxAge
}
