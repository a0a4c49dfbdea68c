package checkout

import (
	"net/http"

	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/handlers/user"
	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/orders"

	"github.com/gin-gonic/gin"
)

// LoginRedirect ramène le visiteur au panier après connexion.
const LoginRedirect = "/login?redirect=/cart"

type Handler struct {
	orders *orders.Service
}

func NewHandler(svc *orders.Service) *Handler {
	return &Handler{orders: svc}
}

// POST /api/checkout
// Monté derrière Auth.Optional : un visiteur anonyme reçoit un 401 avec
// l'URL de connexion, et son panier n'est pas touché.
func (h *Handler) Checkout(c *gin.Context) {
	me, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":    "Veuillez vous connecter",
			"redirect": LoginRedirect,
		})
		return
	}

	var input struct {
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	order, err := h.orders.Checkout(c.Request.Context(), me, input.ShippingAddress)
	if err != nil {
		user.FailOrder(c, "Erreur validation commande", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commande passée avec succès",
		"order":   order,
	})
}
