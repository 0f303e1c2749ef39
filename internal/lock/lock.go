// Package lock serializes ledger mutations per customer.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrNotAcquired is returned by TryLock when the key is held elsewhere.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker hands out exclusive leases on string keys.
type Locker interface {
	// Lock blocks until key is held or ctx is done.
	Lock(ctx context.Context, key string) (release func(), err error)

	// TryLock acquires key only if it is free, failing with ErrNotAcquired otherwise.
	TryLock(ctx context.Context, key string) (release func(), err error)
}

// CustomerKey is the lock key guarding a customer's limit and debt.
func CustomerKey(customerID string) string {
	return "customer:" + customerID
}

// KeyedMutex is an in-process Locker. Entries are dropped once nobody holds
// or waits on them.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	e := k.acquire(key)

	select {
	case e.sem <- struct{}{}:
		return k.releaser(key, e), nil
	case <-ctx.Done():
		k.drop(key, e)
		return nil, ctx.Err()
	}
}

func (k *KeyedMutex) TryLock(_ context.Context, key string) (func(), error) {
	e := k.acquire(key)

	select {
	case e.sem <- struct{}{}:
		return k.releaser(key, e), nil
	default:
		k.drop(key, e)
		return nil, ErrNotAcquired
	}
}

func (k *KeyedMutex) acquire(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) drop(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

func (k *KeyedMutex) releaser(key string, e *entry) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.drop(key, e)
		})
	}
}
