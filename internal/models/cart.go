package models

// Customization regroupe les choix faits dans l'atelier de personnalisation.
// Image contient une data URI ou l'URL d'un objet stocké.
type Customization struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

func (c *Customization) IsZero() bool {
	return c == nil || (c.Color == "" && c.Size == "" && c.Text == "" && c.Image == "")
}

// CartItem est une ligne du panier. Deux ajouts du même produit avec la
// même personnalisation partagent la même Key.
type CartItem struct {
	Key           string         `json:"key"`
	ProductID     string         `json:"id"`
	Name          string         `json:"name"`
	Price         float64        `json:"price"`
	Image         string         `json:"image"`
	Quantity      int            `json:"quantity"`
	Customization *Customization `json:"customization,omitempty"`
}

type CartSummary struct {
	Items                 []CartItem `json:"items"`
	Count                 int        `json:"count"`
	Units                 int        `json:"units"`
	Subtotal              float64    `json:"subtotal"`
	Shipping              float64    `json:"shipping"`
	Total                 float64    `json:"total"`
	FreeShippingThreshold float64    `json:"free_shipping_threshold"`
}
