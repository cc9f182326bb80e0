package products

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/clvmartin/boutique/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products   []domain.Product
	categories []string
	err        error

	categoryFetches int
}

func (f *fakeCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]string, error) {
	return f.categories, f.err
}

func (f *fakeCatalog) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	f.categoryFetches++
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Product
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Title), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []domain.Product{
			{ID: 1, Title: "Backpack", Price: 109.95, Category: "men's clothing", Rating: domain.Rating{Rate: 3.9}},
			{ID: 2, Title: "T-Shirt", Price: 22.3, Category: "men's clothing", Rating: domain.Rating{Rate: 4.1}},
			{ID: 3, Title: "Gold Ring", Price: 168, Category: "jewelery", Rating: domain.Rating{Rate: 4.6}},
		},
		categories: []string{"men's clothing", "jewelery"},
	}
}

func TestRefresh(t *testing.T) {
	c := New(testCatalog(), nil)
	c.Refresh(context.Background())

	assert.False(t, c.Loading())
	assert.Empty(t, c.Err())
	assert.Len(t, c.Products(), 3)
	assert.Len(t, c.Filtered(), 3)
	assert.Equal(t, []string{"men's clothing", "jewelery"}, c.Categories())
}

func TestRefreshErrorIsNormalized(t *testing.T) {
	c := New(&fakeCatalog{err: errors.New("network down")}, nil)
	c.Refresh(context.Background())

	assert.False(t, c.Loading())
	assert.Contains(t, c.Err(), "network down")
	assert.Empty(t, c.Products())
}

func TestSetCategoryFetchesServerSide(t *testing.T) {
	catalog := testCatalog()
	c := New(catalog, nil)
	c.Refresh(context.Background())

	c.SetCategory(context.Background(), "jewelery")
	require.Len(t, c.Filtered(), 1)
	assert.Equal(t, int64(3), c.Filtered()[0].ID)
	assert.Equal(t, "jewelery", c.Category())
	assert.Equal(t, 1, catalog.categoryFetches)

	// Full catalog stays cached underneath the filter.
	assert.Len(t, c.Products(), 3)
}

func TestClearingCategoryRestoresUnsortedFullList(t *testing.T) {
	catalog := testCatalog()
	c := New(catalog, nil)
	c.Refresh(context.Background())

	c.SortBy(SortPriceDesc)
	c.SetCategory(context.Background(), "jewelery")
	c.SetCategory(context.Background(), "")

	got := c.Filtered()
	require.Len(t, got, 3)
	// Original fetch order, not the earlier sort.
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	assert.Equal(t, int64(3), got[2].ID)
	assert.Empty(t, c.Category())
	// No network round trip for the reset.
	assert.Equal(t, 1, catalog.categoryFetches)
}

func TestSortBy(t *testing.T) {
	c := New(testCatalog(), nil)
	c.Refresh(context.Background())

	t.Run("price ascending", func(t *testing.T) {
		c.SortBy(SortPriceAsc)
		got := c.Filtered()
		assert.Equal(t, []int64{2, 1, 3}, ids(got))
	})

	t.Run("price descending", func(t *testing.T) {
		c.SortBy(SortPriceDesc)
		assert.Equal(t, []int64{3, 1, 2}, ids(c.Filtered()))
	})

	t.Run("rating descending", func(t *testing.T) {
		c.SortBy(SortRatingDesc)
		assert.Equal(t, []int64{3, 2, 1}, ids(c.Filtered()))
	})
}

func TestSearchDoesNotTouchFilteredView(t *testing.T) {
	c := New(testCatalog(), nil)
	c.Refresh(context.Background())

	got, err := c.Search(context.Background(), "ring")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].ID)

	assert.Len(t, c.Filtered(), 3)
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}
