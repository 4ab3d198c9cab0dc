// Package agent implements the per-user password cache daemon (C8): an
// in-memory UUID→password map served over a user-private Unix socket, so a
// sequence of CLI invocations against the same shrine only prompts for the
// password once. Individual handlers are mutually exclusive over the map;
// a single mutex suffices since this is the only concurrent component in
// the core.
package agent

import (
	"sync"

	"github.com/google/uuid"

	"github.com/allisson/shrine/internal/shrine/domain"
)

// Cache is the process-local UUID→password map. The zero value is not
// usable; construct with NewCache.
type Cache struct {
	mu        sync.Mutex
	passwords map[uuid.UUID]domain.Password
}

// NewCache constructs an empty Cache.
func NewCache() *Cache {
	return &Cache{passwords: make(map[uuid.UUID]domain.Password)}
}

// Put binds password to id, replacing (and scrubbing) any previous entry.
// The cache takes ownership of a private copy of password.
func (c *Cache) Put(id uuid.UUID, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.passwords[id]; ok {
		existing.Scrub()
	}
	c.passwords[id] = domain.NewPassword(password)
}

// Get returns the cached password for id, if any.
func (c *Cache) Get(id uuid.UUID) (domain.Password, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.passwords[id]
	return p, ok
}

// Remove drops and scrubs the cached password for id, if any.
func (c *Cache) Remove(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.passwords[id]; ok {
		existing.Scrub()
		delete(c.passwords, id)
	}
}

// Clear drops and scrubs every cached password. Used by `agent
// clear-passwords`.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, p := range c.passwords {
		p.Scrub()
		delete(c.passwords, id)
	}
}

// Len reports the number of cached passwords.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.passwords)
}
