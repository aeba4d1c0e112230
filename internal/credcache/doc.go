// Package credcache provides a memoizing cache for credential verification,
// keyed by the exact (username, password hash) pair. Positive lookups only;
// misses always fall through to the store.
package credcache
