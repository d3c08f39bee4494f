package memory

import (
	"context"
	"fmt"

	"storefront/pkg/catalog"
)

type seedProduct struct {
	name        string
	description string
	price       int64
	inStock     bool
}

var seedData = []struct {
	category catalog.Category
	products []seedProduct
}{
	{
		category: catalog.Category{Name: "Whole Spices", Description: "Seeds, pods and barks, unground"},
		products: []seedProduct{
			{"Green Cardamom", "Bold 8mm pods from Idukki", 45000, true},
			{"Black Pepper", "Malabar garbled, 500g", 32000, true},
			{"Cinnamon Sticks", "Ceylon quills", 27500, false},
		},
	},
	{
		category: catalog.Category{Name: "Ground Spices", Description: "Stone-ground powders"},
		products: []seedProduct{
			{"Turmeric Powder", "Lakadong, high curcumin", 18000, true},
			{"Kashmiri Chilli", "Deep colour, mild heat", 22000, true},
		},
	},
	{
		category: catalog.Category{Name: "Blends", Description: "House masalas"},
		products: []seedProduct{
			{"Garam Masala", "Twelve spice house blend", 25500, true},
			{"Sambar Powder", "Roasted lentil and chilli blend", 19900, true},
		},
	},
}

// Seed loads the demo categories and products into the repository.
func Seed(ctx context.Context, r catalog.Repository) error {
	for _, s := range seedData {
		c, err := r.AddCategory(ctx, s.category)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", s.category.Name, err)
		}
		for _, sp := range s.products {
			p := catalog.Product{
				Name:        sp.name,
				Description: sp.description,
				Price:       sp.price,
				CategoryID:  c.ID,
				InStock:     sp.inStock,
			}
			if _, err := r.AddProduct(ctx, p); err != nil {
				return fmt.Errorf("seed product %q: %w", sp.name, err)
			}
		}
	}
	return nil
}
