package models

import "time"

// Product est un article du catalogue. Les options de personnalisation
// n'ont de sens que si IsCustomizable est vrai.
type Product struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Description            string    `json:"description"`
	Price                  float64   `json:"price"`
	Category               string    `json:"category"`
	Image                  string    `json:"image"`
	Images                 []string  `json:"images,omitempty"`
	IsCustomizable         bool      `json:"isCustomizable"`
	AvailableColors        []string  `json:"availableColors,omitempty"`
	AvailableSizes         []string  `json:"availableSizes,omitempty"`
	AllowTextCustomization bool      `json:"allowTextCustomization"`
	AllowImageUpload       bool      `json:"allowImageUpload"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// HasColor indique si la couleur fait partie des couleurs proposées.
func (p *Product) HasColor(color string) bool {
	return contains(p.AvailableColors, color)
}

// HasSize indique si la taille fait partie des tailles proposées.
func (p *Product) HasSize(size string) bool {
	return contains(p.AvailableSizes, size)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
