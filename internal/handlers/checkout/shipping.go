package checkout

import (
	"net/http"

	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

var expressFee = decimal.NewFromFloat(12.99)

// ShippingOptions calcule les options de livraison pour un montant de
// panier. La livraison standard suit la même règle que le panier.
func ShippingOptions(cartTotal decimal.Decimal) models.ShippingCalculation {
	standard := cart.Shipping(cartTotal, false)
	threshold := decimal.NewFromFloat(cart.FreeShippingThreshold)
	isFree := standard.IsZero()

	options := []models.ShippingOption{
		{
			ID:            "standard",
			Name:          "Livraison Standard",
			Description:   "Livraison en 5-7 jours ouvrés",
			Price:         standard.InexactFloat64(),
			EstimatedDays: 7,
		},
		{
			ID:            "express",
			Name:          "Livraison Express",
			Description:   "Livraison en 2-3 jours ouvrés",
			Price:         expressFee.InexactFloat64(),
			EstimatedDays: 3,
		},
	}
	if isFree {
		options[0].Name = "Livraison Standard Gratuite"
	}

	remaining := decimal.Zero
	if !isFree {
		// Gratuit strictement au-dessus du seuil : il manque au moins un centime.
		remaining = threshold.Sub(cartTotal).Add(decimal.New(1, -2))
	}

	return models.ShippingCalculation{
		Options:       options,
		FreeThreshold: cart.FreeShippingThreshold,
		CartTotal:     cartTotal.InexactFloat64(),
		IsFree:        isFree,
		Remaining:     remaining.InexactFloat64(),
	}
}

// GET /api/shipping?cart_total=
func GetShippingOptions(c *gin.Context) {
	cartTotal := decimal.Zero
	if raw := c.Query("cart_total"); raw != "" {
		n, err := decimal.NewFromString(raw)
		if err != nil || n.IsNegative() {
			handlers.Fail(c, http.StatusBadRequest, "Paramètre 'cart_total' invalide")
			return
		}
		cartTotal = n.Round(2)
	}

	c.JSON(http.StatusOK, ShippingOptions(cartTotal))
}
