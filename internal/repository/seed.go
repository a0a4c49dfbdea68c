package repository

import (
	"time"

	"atelier_back_end/internal/models"
)

func photo(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?ixlib=rb-1.2.1&auto=format&fit=crop&w=800&q=80"
}

// SeedProducts retourne le catalogue de démarrage.
func SeedProducts() []models.Product {
	created := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	products := []models.Product{
		{
			ID:          "1",
			Name:        "Classic T-Shirt",
			Description: "A comfortable and versatile t-shirt made from 100% cotton. Perfect for everyday wear.",
			Price:       24.99,
			Category:    "T-Shirts",
			Image:       photo("1521572163474-6864f9cf17ab"),
			Images: []string{
				photo("1521572163474-6864f9cf17ab"),
				photo("1503341504253-dff4815485f1"),
				photo("1503342394128-c104d54dba01"),
			},
			IsCustomizable:         true,
			AvailableColors:        []string{"white", "black", "gray", "blue", "red"},
			AvailableSizes:         []string{"XS", "S", "M", "L", "XL", "XXL"},
			AllowTextCustomization: true,
			AllowImageUpload:       true,
		},
		{
			ID:             "2",
			Name:           "Slim Fit Jeans",
			Description:    "Modern slim fit jeans with a comfortable stretch. Versatile and stylish for any occasion.",
			Price:          49.99,
			Category:       "Pants",
			Image:          photo("1542272604-787c3835535d"),
			AvailableSizes: []string{"28", "30", "32", "34", "36", "38"},
		},
		{
			ID:          "3",
			Name:        "Graphic Hoodie",
			Description: "A warm and stylish hoodie with a modern graphic design. Perfect for cooler weather.",
			Price:       39.99,
			Category:    "Hoodies",
			Image:       photo("1556821840-3a63f95609a7"),
			Images: []string{
				photo("1556821840-3a63f95609a7"),
				photo("1578587018452-892bacefd3f2"),
				photo("1551537482-f2075a1d41f2"),
			},
			IsCustomizable:         true,
			AvailableColors:        []string{"black", "gray", "navy", "maroon"},
			AvailableSizes:         []string{"S", "M", "L", "XL", "XXL"},
			AllowTextCustomization: true,
			AllowImageUpload:       true,
		},
		{
			ID:              "4",
			Name:            "Summer Dress",
			Description:     "A light and flowy summer dress perfect for warm days. Made from breathable fabric.",
			Price:           34.99,
			Category:        "Dresses",
			Image:           photo("1612336307429-8a898d10e223"),
			IsCustomizable:  true,
			AvailableColors: []string{"white", "blue", "floral", "pink"},
			AvailableSizes:  []string{"XS", "S", "M", "L", "XL"},
		},
		{
			ID:             "5",
			Name:           "Athletic Shorts",
			Description:    "Lightweight and breathable athletic shorts. Perfect for workouts or casual wear.",
			Price:          29.99,
			Category:       "Shorts",
			Image:          photo("1591195853828-11db59a44f6b"),
			AvailableSizes: []string{"S", "M", "L", "XL"},
		},
		{
			ID:                     "6",
			Name:                   "Denim Jacket",
			Description:            "A classic denim jacket that never goes out of style. Durable and versatile.",
			Price:                  59.99,
			Category:               "Jackets",
			Image:                  photo("1551537482-f2075a1d41f2"),
			IsCustomizable:         true,
			AvailableColors:        []string{"blue", "black", "light wash"},
			AvailableSizes:         []string{"S", "M", "L", "XL"},
			AllowTextCustomization: true,
			AllowImageUpload:       true,
		},
		{
			ID:                     "7",
			Name:                   "Polo Shirt",
			Description:            "A classic polo shirt made from premium cotton. Perfect for casual and semi-formal occasions.",
			Price:                  34.99,
			Category:               "T-Shirts",
			Image:                  photo("1581655353564-df123a1eb820"),
			IsCustomizable:         true,
			AvailableColors:        []string{"white", "black", "navy", "green", "red"},
			AvailableSizes:         []string{"S", "M", "L", "XL", "XXL"},
			AllowTextCustomization: true,
		},
		{
			ID:             "8",
			Name:           "Winter Coat",
			Description:    "A warm and stylish winter coat. Perfect for cold weather and snow.",
			Price:          89.99,
			Category:       "Jackets",
			Image:          photo("1539533018447-63fcce2678e3"),
			AvailableSizes: []string{"S", "M", "L", "XL"},
		},
	}

	for i := range products {
		products[i].CreatedAt = created
		products[i].UpdatedAt = created
	}
	return products
}
