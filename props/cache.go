package props

import (
	"sort"
	"sync"
	"time"
)

// MaxAge stands in for an unbounded max age.
const MaxAge = time.Duration(1<<63 - 1)

// Key builds the cache key for a module's resource.
func Key(module, resourcePath string) string {
	return module + ":" + resourcePath
}

// Cache memoizes one Table per key for the lifetime of the process.
// Entries are never evicted.
type Cache struct {
	tables sync.Map // map[string]*Table
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Get returns the table for key, creating an empty one on first access.
// The insert is atomic so concurrent callers always share one table.
func (c *Cache) Get(key string) *Table {
	if t, ok := c.tables.Load(key); ok {
		return t.(*Table) //nolint:errcheck,forcetypeassert // only *Table is stored
	}
	t, _ := c.tables.LoadOrStore(key, NewTable())
	return t.(*Table) //nolint:errcheck,forcetypeassert // only *Table is stored
}

// Lookup returns the table for key without creating one.
func (c *Cache) Lookup(key string) (*Table, bool) {
	t, ok := c.tables.Load(key)
	if !ok {
		return nil, false
	}
	return t.(*Table), true //nolint:forcetypeassert // only *Table is stored
}

func (c *Cache) Len() int {
	n := 0
	c.tables.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Keys returns the cached keys, sorted.
func (c *Cache) Keys() []string {
	var keys []string
	c.tables.Range(func(k, _ any) bool {
		keys = append(keys, k.(string)) //nolint:forcetypeassert // keys are strings
		return true
	})
	sort.Strings(keys)
	return keys
}
