package match

import (
	"strings"
	"sync"
)

// Cache memoizes catalog lookups for one matcher instance. Entries are
// best-effort: a miss falls through to the database. After a merge the cache
// must be invalidated explicitly, because merged identities are deleted and
// a stale entry would reference a now-nonexistent row.
type Cache struct {
	mu       sync.Mutex
	items    map[string]string
	variants map[string]string
}

// NewCache constructs an empty lookup cache.
func NewCache() *Cache {
	return &Cache{
		items:    map[string]string{},
		variants: map[string]string{},
	}
}

// Invalidate drops every memoized entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]string{}
	c.variants = map[string]string{}
}

func itemKey(name, itemType string) string {
	return strings.ToLower(name) + "\x00" + strings.ToLower(itemType)
}

func (c *Cache) item(name, itemType string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.items[itemKey(name, itemType)]
	return id, ok
}

func (c *Cache) storeItem(name, itemType, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[itemKey(name, itemType)] = id
}

func (c *Cache) variant(token string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.variants[strings.ToLower(token)]
	return id, ok
}

func (c *Cache) storeVariant(token, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.variants[strings.ToLower(token)] = id
}
