// Package cachestore provides a gin-cache store that expires entries lazily
// on access instead of running a cleanup goroutine
package cachestore

import (
	"sync"
	"time"

	"github.com/chenyahui/gin-cache/persist"
)

type entry struct {
	payload []byte
	expires time.Time
}

// Lazy implements persist.CacheStore. Expired entries are dropped when read
// and the whole map is swept on writes once it grows past MaxEntries.
type Lazy struct {
	MaxEntries int

	mu      sync.Mutex
	entries map[string]entry
}

var _ persist.CacheStore = (*Lazy)(nil)

func NewLazy(maxEntries int) *Lazy {
	return &Lazy{
		MaxEntries: maxEntries,
		entries:    make(map[string]entry),
	}
}

func (l *Lazy) Get(key string, value any) error {
	l.mu.Lock()
	e, ok := l.entries[key]
	if ok && time.Now().After(e.expires) {
		delete(l.entries, key)
		ok = false
	}
	l.mu.Unlock()

	if !ok {
		return persist.ErrCacheMiss
	}

	return persist.Deserialize(e.payload, value)
}

func (l *Lazy) Set(key string, value any, expire time.Duration) error {
	payload, err := persist.Serialize(value)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.MaxEntries > 0 && len(l.entries) >= l.MaxEntries {
		now := time.Now()
		for k, e := range l.entries {
			if now.After(e.expires) {
				delete(l.entries, k)
			}
		}

		// Still full, make room by dropping an arbitrary entry
		for k := range l.entries {
			if len(l.entries) < l.MaxEntries {
				break
			}
			delete(l.entries, k)
		}
	}

	l.entries[key] = entry{payload: payload, expires: time.Now().Add(expire)}
	return nil
}

func (l *Lazy) Delete(key string) error {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()

	return nil
}
