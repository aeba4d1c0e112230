// ABOUTME: Thread-safe memoization cache for credential-verification lookups.
// ABOUTME: Caches positive matches only, keyed by the exact (username, hash) pair.

package credcache

import (
	"context"
	"errors"
	"sync"

	"github.com/2389/checklist/internal/store"
)

// Cache memoizes successful (username, passwordHash) → user lookups so a
// session's repeated logins don't hit the store again.
//
// Only positive results are cached. A failed lookup is never remembered:
// a username that does not match today may be registered later in the same
// process lifetime, possibly with the very password hash that just failed,
// and a stale negative entry would then shadow the new row. Falling
// through to the store on every miss trades a cache hit on failed logins
// for correctness.
type Cache struct {
	mu    sync.RWMutex
	store store.Store
	users map[credKey]*store.User
}

// credKey is the literal credential pair. Keying on the full pair (never
// on username alone) makes a password change or fresh registration a
// cache miss instead of a stale hit.
type credKey struct {
	username     string
	passwordHash string
}

// New creates a credential cache backed by the given store.
func New(st store.Store) *Cache {
	return &Cache{
		store: st,
		users: make(map[credKey]*store.User),
	}
}

// Lookup returns the user matching the exact credential pair, consulting
// the cache first. On a miss it queries the store and, only on a match,
// records the outcome. Returns store.ErrNotFound when no row matches.
//
// Concurrent lookups for the same uncached key may each reach the store
// once; the duplicate read is harmless and the first result wins.
func (c *Cache) Lookup(ctx context.Context, username, passwordHash string) (*store.User, error) {
	key := credKey{username: username, passwordHash: passwordHash}

	c.mu.RLock()
	user, ok := c.users[key]
	c.mu.RUnlock()
	if ok {
		return user, nil
	}

	user, err := c.store.GetUserByCredentials(ctx, username, passwordHash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	c.mu.Lock()
	c.users[key] = user
	c.mu.Unlock()

	return user, nil
}

// Len returns the number of cached credential pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}
