package user

import (
	"errors"
	"net/http"

	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/catalog"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

type CartHandler struct {
	carts   cart.Store
	catalog *catalog.Service
}

func NewCartHandler(carts cart.Store, svc *catalog.Service) *CartHandler {
	return &CartHandler{carts: carts, catalog: svc}
}

// GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	items, err := h.carts.Load(c.Request.Context(), me.ID)
	if err != nil {
		handlers.Internal(c, "Erreur lecture panier", err)
		return
	}
	c.JSON(http.StatusOK, cart.Summarize(items))
}

// POST /api/cart/add
func (h *CartHandler) Add(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	var input struct {
		ProductID     string                `json:"productId"`
		Quantity      *int                  `json:"quantity"`
		Customization *models.Customization `json:"customization"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}
	if input.ProductID == "" {
		handlers.Fail(c, http.StatusBadRequest, "Le champ 'productId' est requis")
		return
	}
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}

	ctx := c.Request.Context()
	p, err := h.catalog.Get(ctx, input.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Produit non trouvé")
		return
	}
	if err != nil {
		handlers.Internal(c, "Erreur lecture produit", err)
		return
	}

	h.update(c, me.ID, func(items []models.CartItem) ([]models.CartItem, error) {
		return cart.Add(items, models.CartItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Image:         p.Image,
			Quantity:      quantity,
			Customization: input.Customization,
		})
	})
}

// PUT /api/cart/:key
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	var input struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	key := c.Param("key")
	h.update(c, me.ID, func(items []models.CartItem) ([]models.CartItem, error) {
		return cart.UpdateQuantity(items, key, input.Quantity)
	})
}

// DELETE /api/cart/:key
func (h *CartHandler) Remove(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	key := c.Param("key")
	h.update(c, me.ID, func(items []models.CartItem) ([]models.CartItem, error) {
		return cart.Remove(items, key)
	})
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), me.ID); err != nil {
		handlers.Internal(c, "Erreur vidage panier", err)
		return
	}
	c.JSON(http.StatusOK, cart.Summarize(nil))
}

// update applique op au panier de façon atomique et renvoie le
// récapitulatif recalculé.
func (h *CartHandler) update(c *gin.Context, userID string, op cart.Mutation) {
	items, err := h.carts.Update(c.Request.Context(), userID, op)
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		handlers.Fail(c, http.StatusNotFound, "Article introuvable dans le panier")
		return
	case errors.Is(err, cart.ErrInvalidQuantity):
		handlers.Fail(c, http.StatusBadRequest, "Quantité invalide")
		return
	case errors.Is(err, cart.ErrMissingProduct):
		handlers.Fail(c, http.StatusBadRequest, "Produit manquant")
		return
	case errors.Is(err, cart.ErrConflict):
		handlers.Fail(c, http.StatusConflict, "Panier modifié depuis un autre appareil, réessayez")
		return
	case err != nil:
		handlers.Internal(c, "Erreur mise à jour panier", err)
		return
	}
	c.JSON(http.StatusOK, cart.Summarize(items))
}
