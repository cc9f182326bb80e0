// Package cart holds the on-device shopping cart container: an
// injected, persisted state object any screen can read, mutate and
// subscribe to.
package cart

import (
	"errors"
	"sync"

	"github.com/clvmartin/boutique/internal/catalog/domain"
	"github.com/clvmartin/boutique/pkg/storage"
	"github.com/shopspring/decimal"
)

const storageKey = "cart"

type Item struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type Container struct {
	mu    sync.Mutex
	items []Item
	err   string

	store *storage.Store
	subs  []func()
}

// New builds a cart, restoring the previous snapshot when the store
// has one. A nil store gives an ephemeral cart.
func New(store *storage.Store) *Container {
	c := &Container{store: store}
	if store != nil {
		var items []Item
		if err := store.Load(storageKey, &items); err == nil {
			c.items = items
		} else if !errors.Is(err, storage.ErrNotFound) {
			c.err = err.Error()
		}
	}
	return c
}

// Subscribe registers fn to run after every mutation. The returned
// function unsubscribes.
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

// AddItem merges by product id: adding a product already in the cart
// bumps its quantity instead of appending a second entry.
func (c *Container) AddItem(p domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	c.mutate(func() {
		for i := range c.items {
			if c.items[i].Product.ID == p.ID {
				c.items[i].Quantity += quantity
				return
			}
		}
		c.items = append(c.items, Item{Product: p, Quantity: quantity})
	})
}

func (c *Container) RemoveItem(productID int64) {
	c.mutate(func() {
		c.removeLocked(productID)
	})
}

// UpdateQuantity sets the quantity for a product; anything at or below
// zero removes the entry, so the cart never holds a non-positive line.
func (c *Container) UpdateQuantity(productID int64, quantity int) {
	c.mutate(func() {
		if quantity <= 0 {
			c.removeLocked(productID)
			return
		}
		for i := range c.items {
			if c.items[i].Product.ID == productID {
				c.items[i].Quantity = quantity
				return
			}
		}
	})
}

func (c *Container) Clear() {
	c.mutate(func() {
		c.items = nil
	})
}

func (c *Container) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// TotalPrice recomputes the sum of price times quantity on every call.
func (c *Container) TotalPrice() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, item := range c.items {
		line := decimal.NewFromFloat(item.Product.Price).
			Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total.InexactFloat64()
}

func (c *Container) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

func (c *Container) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Container) removeLocked(productID int64) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	c.items = kept
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
