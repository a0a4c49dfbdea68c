package product

import (
	"errors"
	"net/http"
	"strings"

	"atelier_back_end/internal/catalog"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog   *catalog.Service
	images    ImageStorage
	maxUpload int64
}

// NewHandler accepte un stockage d'images nil : l'upload répond alors 503.
func NewHandler(svc *catalog.Service, images ImageStorage, maxUpload int64) *Handler {
	return &Handler{catalog: svc, images: images, maxUpload: maxUpload}
}

// GET /api/products
func (h *Handler) List(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		handlers.Internal(c, "Erreur lecture produits", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/products/:id
func (h *Handler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, catalog.ErrProductNotFound) {
		handlers.Fail(c, http.StatusNotFound, "Produit non trouvé")
		return
	}
	if err != nil {
		handlers.Internal(c, "Erreur lecture produit", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/products/customizable/list
func (h *Handler) Customizable(c *gin.Context) {
	products, err := h.catalog.Customizable(c.Request.Context())
	if err != nil {
		handlers.Internal(c, "Erreur lecture produits personnalisables", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/products/category/:category
func (h *Handler) ByCategory(c *gin.Context) {
	products, err := h.catalog.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		handlers.Internal(c, "Erreur lecture catégorie", err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /api/products/search?q=
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		handlers.Fail(c, http.StatusBadRequest, "Paramètre 'q' requis")
		return
	}

	products, err := h.catalog.Search(c.Request.Context(), q)
	if err != nil {
		handlers.Internal(c, "Erreur recherche produits", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": q, "count": len(products), "products": products})
}

// POST /api/products (admin)
func (h *Handler) Create(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	created, err := h.catalog.Create(c.Request.Context(), p)
	if errors.Is(err, catalog.ErrInvalidProduct) {
		handlers.Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		handlers.Internal(c, "Erreur création produit", err)
		return
	}
	c.JSON(http.StatusCreated, created)
}
