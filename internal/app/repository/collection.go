package repository

import (
	"context"
	"slices"

	"github.com/ikkim/maison-backend/internal/kv"
)

// Collection is an ordered list of entities persisted in a single slot.
type Collection[T any] struct {
	b binding[[]T]
}

// BindCollection loads slot from store, seeding it with defaults when the slot
// is missing or unreadable.
func BindCollection[T any](ctx context.Context, store kv.Store, slot string, defaults []T, migrations ...Migration) (*Collection[T], error) {
	c := &Collection[T]{b: binding[[]T]{store: store, slot: slot, migrations: migrations}}
	if defaults == nil {
		defaults = []T{}
	}
	if err := c.b.load(ctx, defaults); err != nil {
		return nil, err
	}
	if c.b.value == nil {
		c.b.value = []T{}
	}
	return c, nil
}

func (c *Collection[T]) Slot() string {
	return c.b.slot
}

// All returns a copy of the current entities.
func (c *Collection[T]) All() []T {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	return slices.Clone(c.b.value)
}

func (c *Collection[T]) Len() int {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	return len(c.b.value)
}

// Find returns the first entity matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.b.mu.RLock()
	defer c.b.mu.RUnlock()
	for _, item := range c.b.value {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Mutate applies fn to a copy of the entities. If fn fails nothing changes.
// Otherwise the result becomes the current value and is written back; a
// failed write returns ErrPersistFailed with the new value kept in memory.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()

	next, err := fn(slices.Clone(c.b.value))
	if err != nil {
		return err
	}
	if next == nil {
		next = []T{}
	}
	c.b.value = next
	return c.b.persist(ctx)
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	return c.Mutate(ctx, func([]T) ([]T, error) {
		return slices.Clone(items), nil
	})
}

// Document is a single value persisted in a slot.
type Document[T any] struct {
	b binding[T]
}

func BindDocument[T any](ctx context.Context, store kv.Store, slot string, defaults T, migrations ...Migration) (*Document[T], error) {
	d := &Document[T]{b: binding[T]{store: store, slot: slot, migrations: migrations}}
	if err := d.b.load(ctx, defaults); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document[T]) Get() T {
	d.b.mu.RLock()
	defer d.b.mu.RUnlock()
	return d.b.value
}

// Update follows the same rules as Collection.Mutate.
func (d *Document[T]) Update(ctx context.Context, fn func(current T) (T, error)) error {
	d.b.mu.Lock()
	defer d.b.mu.Unlock()

	next, err := fn(d.b.value)
	if err != nil {
		return err
	}
	d.b.value = next
	return d.b.persist(ctx)
}
