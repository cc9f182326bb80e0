// Package products caches the remote catalog and the filtered view the
// shop screens render.
package products

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/clvmartin/boutique/internal/catalog/domain"
	"github.com/clvmartin/boutique/pkg/storage"
	"golang.org/x/sync/errgroup"
)

const storageKey = "products"

type Catalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

type SortMode int

const (
	SortNone SortMode = iota
	SortPriceAsc
	SortPriceDesc
	SortRatingDesc
)

type snapshot struct {
	Products   []domain.Product `json:"products"`
	Categories []string         `json:"categories"`
}

type Container struct {
	mu         sync.Mutex
	products   []domain.Product
	filtered   []domain.Product
	categories []string
	category   string
	loading    bool
	err        string

	catalog Catalog
	store   *storage.Store
	subs    []func()
}

func New(catalog Catalog, store *storage.Store) *Container {
	c := &Container{catalog: catalog, store: store}
	if store != nil {
		var snap snapshot
		if err := store.Load(storageKey, &snap); err == nil {
			c.products = snap.Products
			c.filtered = append([]domain.Product(nil), snap.Products...)
			c.categories = snap.Categories
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

// Refresh fetches the full catalog and the category list concurrently
// and resets the filtered view to the full, unsorted list.
func (c *Container) Refresh(ctx context.Context) {
	c.setLoading()

	var (
		products   []domain.Product
		categories []string
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.catalog.ListProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = c.catalog.ListCategories(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		c.setError(err)
		return
	}

	c.mutate(func() {
		c.products = products
		c.filtered = append([]domain.Product(nil), products...)
		c.categories = categories
		c.category = ""
	})
}

// SetCategory filters the view. A named category is a fresh
// server-side-filtered fetch, not a local filter; the empty name
// restores the cached full list, unsorted.
func (c *Container) SetCategory(ctx context.Context, name string) {
	if name == "" {
		c.mutate(func() {
			c.filtered = append([]domain.Product(nil), c.products...)
			c.category = ""
		})
		return
	}

	c.setLoading()
	filtered, err := c.catalog.ListByCategory(ctx, name)
	if err != nil {
		c.setError(err)
		return
	}

	c.mutate(func() {
		c.filtered = filtered
		c.category = name
	})
}

// SortBy reorders the filtered view in place. The order does not
// survive a category change.
func (c *Container) SortBy(mode SortMode) {
	c.mutate(func() {
		switch mode {
		case SortPriceAsc:
			sort.SliceStable(c.filtered, func(i, j int) bool {
				return c.filtered[i].Price < c.filtered[j].Price
			})
		case SortPriceDesc:
			sort.SliceStable(c.filtered, func(i, j int) bool {
				return c.filtered[i].Price > c.filtered[j].Price
			})
		case SortRatingDesc:
			sort.SliceStable(c.filtered, func(i, j int) bool {
				return c.filtered[i].Rating.Rate > c.filtered[j].Rating.Rate
			})
		}
	})
}

// Search is a passthrough to the catalog's substring search; it does
// not touch the filtered view.
func (c *Container) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return c.catalog.SearchProducts(ctx, query)
}

func (c *Container) Products() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Product(nil), c.products...)
}

func (c *Container) Filtered() []domain.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Product(nil), c.filtered...)
}

func (c *Container) Categories() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.categories...)
}

func (c *Container) Category() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.category
}

func (c *Container) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Container) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Container) setLoading() {
	c.mu.Lock()
	c.loading = true
	c.err = ""
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) setError(err error) {
	c.mu.Lock()
	c.loading = false
	c.err = err.Error()
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) mutate(fn func()) {
	c.mu.Lock()
	fn()
	c.loading = false
	c.err = ""
	if c.store != nil {
		snap := snapshot{Products: c.products, Categories: c.categories}
		if err := c.store.Save(storageKey, snap); err != nil {
			c.err = err.Error()
		}
	}
	subs := c.subsCopy()
	c.mu.Unlock()
	notify(subs)
}

func (c *Container) subsCopy() []func() {
	subs := make([]func(), len(c.subs))
	copy(subs, c.subs)
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		if fn != nil {
			fn()
		}
	}
}
