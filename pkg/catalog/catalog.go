// Package catalog defines the product and category types sold by the store.
package catalog

import (
	"context"
	"errors"
	"strings"
)

// ProductID identifies a product.
type ProductID uint64

// CategoryID identifies a category.
type CategoryID uint64

// Category groups products on the storefront.
type Category struct {
	ID          CategoryID `json:"categoryId,string"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

// Product is a catalog entry. Price is in minor currency units (paise).
type Product struct {
	ID          ProductID  `json:"productId,string"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Price       int64      `json:"price,string"`
	CategoryID  CategoryID `json:"categoryId,string"`
	InStock     bool       `json:"inStock"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
}

// Repository defines behavior for reading and maintaining the catalog.
type Repository interface {
	Categories(ctx context.Context) ([]Category, error)
	Products(ctx context.Context) ([]Product, error)
	ProductsByCategory(ctx context.Context, id CategoryID) ([]Product, error)
	Product(ctx context.Context, id ProductID) (Product, error)
	AddCategory(ctx context.Context, c Category) (Category, error)
	AddProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) error
}

// ErrNotFound indicates the requested product or category does not exist.
var ErrNotFound = errors.New("catalog entry not found")

// Filter returns the products matching a case-insensitive name or
// description query, a category (zero means any) and stock availability.
func Filter(products []Product, query string, category CategoryID, inStockOnly bool) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if category != 0 && p.CategoryID != category {
			continue
		}
		if inStockOnly && !p.InStock {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}
