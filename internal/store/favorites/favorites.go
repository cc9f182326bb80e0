// Package favorites holds the persisted favorites container: a
// set-like collection of products keyed by product id.
package favorites

import (
	"errors"
	"sync"

	"github.com/clvmartin/boutique/internal/catalog/domain"
	"github.com/clvmartin/boutique/pkg/storage"
)

const storageKey = "favorites"

type Container struct {
	mu    sync.Mutex
	items []domain.Product
	err   string

	store *storage.Store
	subs  []func()
}

func New(store *storage.Store) *Container {
	c := &Container{store: store}
	if store != nil {
		var items []domain.Product
		if err := store.Load(storageKey, &items); err == nil {
			c.items = items
		} else if !errors.Is(err, storage.ErrNotFound) {
			c.err = err.Error()
		}
	}
	return c
}

func (c *Container) Subscribe(fn func()) func() {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	idx := len(c.subs) - 1
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		c.subs[idx] = nil
		c.mu.Unlock()
	}
}

// Add is a no-op when the product is already a favorite.
func (c *Container) Add(p domain.Product) {
	c.mutate(func() {
		for i := range c.items {
			if c.items[i].ID == p.ID {
				return
			}
		}
		c.items = append(c.items, p)
	})
}

func (c *Container) Remove(productID int64) {
	c.mutate(func() {
		for i := range c.items {
			if c.items[i].ID == productID {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return
			}
		}
	})
}

// Toggle adds the product when absent and removes it when present, so
// a double toggle restores the previous membership.
func (c *Container) Toggle(p domain.Product) {
	c.mutate(func() {
		for i := range c.items {
			if c.items[i].ID == p.ID {
				c.items = append(c.items[:i], c.items[i+1:]...)
				return
			}
		}
		c.items = append(c.items, p)
	})
}

func (c *Container) IsFavorite(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

func (c *Container) Items() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Product, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Container) Reset() {
	c.mutate(func() {
		c.items = nil
	})
}

func (c *Container) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Container) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.err = ""
	if c.store != nil {
		if err := c.store.Save(storageKey, c.items); err != nil {
			c.err = err.Error()
		}
	}
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn()
		}
	}
}
