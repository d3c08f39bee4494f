package cart

import (
	"encoding/json"
	"fmt"

	"storefront/pkg/catalog"
)

// record is the persisted form of a line. Integer identifiers and the price
// are written as JSON strings so readers that parse numbers as doubles
// cannot round them.
type record struct {
	ProductID   catalog.ProductID  `json:"productId,string"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	CategoryID  catalog.CategoryID `json:"categoryId,string"`
	InStock     bool               `json:"inStock"`
	ImageURL    *string            `json:"imageUrl,omitempty"`
	Price       int64              `json:"price,string"`
	Quantity    int                `json:"quantity"`
}

// Encode serializes lines, keeping their order.
func Encode(lines []Line) ([]byte, error) {
	recs := make([]record, 0, len(lines))
	for _, l := range lines {
		recs = append(recs, record{
			ProductID:   l.Product.ID,
			Name:        l.Product.Name,
			Description: l.Product.Description,
			CategoryID:  l.Product.CategoryID,
			InStock:     l.Product.InStock,
			ImageURL:    l.Product.ImageURL,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
		})
	}
	return json.Marshal(recs)
}

// Decode parses data written by Encode. It rejects lines with a quantity
// below one and repeated product ids.
func Decode(data []byte) ([]Line, error) {
	var recs []record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}

	seen := make(map[catalog.ProductID]struct{}, len(recs))
	lines := make([]Line, 0, len(recs))
	for i, r := range recs {
		if r.Quantity < 1 {
			return nil, fmt.Errorf("decode cart: line %d: quantity %d", i, r.Quantity)
		}
		if _, dup := seen[r.ProductID]; dup {
			return nil, fmt.Errorf("decode cart: line %d: duplicate product %d", i, r.ProductID)
		}
		seen[r.ProductID] = struct{}{}
		lines = append(lines, Line{
			Product: catalog.Product{
				ID:          r.ProductID,
				Name:        r.Name,
				Description: r.Description,
				Price:       r.Price,
				CategoryID:  r.CategoryID,
				InStock:     r.InStock,
				ImageURL:    r.ImageURL,
			},
			Quantity: r.Quantity,
		})
	}
	return lines, nil
}
