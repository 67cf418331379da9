// Package memory provides in-process product and order stores. Data lives
// only as long as the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// collection is an insertion-ordered map guarded by a read-write mutex.
type collection[T any] struct {
	mu   sync.RWMutex
	ids  []string
	docs map[string]T
	now  func() time.Time
}

func newCollection[T any]() *collection[T] {
	return &collection[T]{
		docs: make(map[string]T),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (c *collection[T]) list() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.docs[id])
	}
	return out
}

func (c *collection[T]) get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	return doc, ok
}

func (c *collection[T]) insert(build func(id string, now time.Time) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	doc := build(id, c.now())
	c.docs[id] = doc
	c.ids = append(c.ids, id)
	return doc
}

func (c *collection[T]) update(id string, apply func(doc *T, now time.Time)) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return doc, false
	}
	apply(&doc, c.now())
	c.docs[id] = doc
	return doc, true
}

func (c *collection[T]) remove(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[id]
	if !ok {
		return doc, false
	}
	delete(c.docs, id)
	for i, v := range c.ids {
		if v == id {
			c.ids = append(c.ids[:i], c.ids[i+1:]...)
			break
		}
	}
	return doc, true
}

// Ping always succeeds. It satisfies the readiness check used for the
// persistent drivers.
func Ping(context.Context) error { return nil }
