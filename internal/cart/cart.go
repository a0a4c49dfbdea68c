package cart

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"

	"atelier_back_end/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrLineNotFound    = errors.New("article introuvable dans le panier")
	ErrInvalidQuantity = errors.New("quantité invalide")
	ErrMissingProduct  = errors.New("produit manquant")
)

const (
	FreeShippingThreshold = 50.00
	FlatShippingFee       = 5.99
)

var (
	freeThreshold = decimal.NewFromFloat(FreeShippingThreshold)
	flatFee       = decimal.NewFromFloat(FlatShippingFee)
)

// LineKey identifie une ligne : même produit et même personnalisation
// donnent la même clé.
func LineKey(productID string, c *models.Customization) string {
	h := sha256.New()
	h.Write([]byte(productID))
	if !c.IsZero() {
		h.Write([]byte{0})
		data, _ := json.Marshal(c)
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Add ajoute un article, ou cumule la quantité si la ligne existe déjà.
func Add(items []models.CartItem, item models.CartItem) ([]models.CartItem, error) {
	if item.ProductID == "" {
		return items, ErrMissingProduct
	}
	if item.Quantity < 1 {
		return items, ErrInvalidQuantity
	}
	if item.Customization.IsZero() {
		item.Customization = nil
	}
	item.Key = LineKey(item.ProductID, item.Customization)

	out := clone(items)
	for i := range out {
		if out[i].Key == item.Key {
			out[i].Quantity += item.Quantity
			return out, nil
		}
	}
	return append(out, item), nil
}

// UpdateQuantity fixe la quantité d'une ligne. Une quantité inférieure à 1
// est ignorée et le panier reste inchangé.
func UpdateQuantity(items []models.CartItem, key string, quantity int) ([]models.CartItem, error) {
	idx := indexOf(items, key)
	if idx < 0 {
		return items, ErrLineNotFound
	}
	if quantity < 1 {
		return items, nil
	}
	out := clone(items)
	out[idx].Quantity = quantity
	return out, nil
}

func Remove(items []models.CartItem, key string) ([]models.CartItem, error) {
	idx := indexOf(items, key)
	if idx < 0 {
		return items, ErrLineNotFound
	}
	out := make([]models.CartItem, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...), nil
}

// Subtotal retourne la somme exacte prix × quantité, arrondie au centime.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		line := decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(line)
	}
	return sum.Round(2)
}

// Shipping est gratuit strictement au-dessus du seuil. Un panier vide
// n'a rien à expédier.
func Shipping(subtotal decimal.Decimal, empty bool) decimal.Decimal {
	if empty || subtotal.GreaterThan(freeThreshold) {
		return decimal.Zero
	}
	return flatFee
}

func Summarize(items []models.CartItem) models.CartSummary {
	if items == nil {
		items = []models.CartItem{}
	}
	subtotal := Subtotal(items)
	shipping := Shipping(subtotal, len(items) == 0)

	units := 0
	for _, it := range items {
		units += it.Quantity
	}

	return models.CartSummary{
		Items:                 items,
		Count:                 len(items),
		Units:                 units,
		Subtotal:              subtotal.InexactFloat64(),
		Shipping:              shipping.InexactFloat64(),
		Total:                 subtotal.Add(shipping).InexactFloat64(),
		FreeShippingThreshold: FreeShippingThreshold,
	}
}

func indexOf(items []models.CartItem, key string) int {
	for i := range items {
		if items[i].Key == key {
			return i
		}
	}
	return -1
}

func clone(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items), len(items)+1)
	copy(out, items)
	return out
}
