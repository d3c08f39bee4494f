// Package memory implements an in-memory catalog repository.
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/pkg/catalog"
)

// Repository provides an in-memory implementation of catalog.Repository.
type Repository struct {
	mu           sync.RWMutex
	categories   map[catalog.CategoryID]catalog.Category
	products     map[catalog.ProductID]catalog.Product
	nextCategory catalog.CategoryID
	nextProduct  catalog.ProductID
}

// New creates an empty in-memory catalog.
func New() *Repository {
	return &Repository{
		categories:   make(map[catalog.CategoryID]catalog.Category),
		products:     make(map[catalog.ProductID]catalog.Product),
		nextCategory: 1,
		nextProduct:  1,
	}
}

// Categories returns all categories ordered by id.
func (r *Repository) Categories(ctx context.Context) ([]catalog.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]catalog.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Products returns all products ordered by id.
func (r *Repository) Products(ctx context.Context) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedProducts(0), nil
}

// ProductsByCategory returns the products of one category.
func (r *Repository) ProductsByCategory(ctx context.Context, id catalog.CategoryID) ([]catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.categories[id]; !ok {
		return nil, catalog.ErrNotFound
	}
	return r.sortedProducts(id), nil
}

// Product retrieves a product by id.
func (r *Repository) Product(ctx context.Context, id catalog.ProductID) (catalog.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// AddCategory stores a category under the next free id.
func (r *Repository) AddCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextCategory
	r.nextCategory++
	r.categories[c.ID] = c
	return c, nil
}

// AddProduct stores a product under the next free id. The category must exist.
func (r *Repository) AddProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[p.CategoryID]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p.ID = r.nextProduct
	r.nextProduct++
	r.products[p.ID] = p
	return p, nil
}

// UpdateProduct replaces an existing product.
func (r *Repository) UpdateProduct(ctx context.Context, p catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return catalog.ErrNotFound
	}
	if _, ok := r.categories[p.CategoryID]; !ok {
		return catalog.ErrNotFound
	}
	r.products[p.ID] = p
	return nil
}

func (r *Repository) sortedProducts(category catalog.CategoryID) []catalog.Product {
	out := make([]catalog.Product, 0, len(r.products))
	for _, p := range r.products {
		if category != 0 && p.CategoryID != category {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
