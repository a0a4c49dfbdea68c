package customize

import (
	"errors"
	"net/http"

	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/catalog"
	"atelier_back_end/internal/customize"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	sessions  customize.Store
	catalog   *catalog.Service
	carts     cart.Store
	images    customize.ImageStore
	maxUpload int64
}

// NewHandler accepte images nil : les visuels sont alors gardés en data URI.
func NewHandler(sessions customize.Store, svc *catalog.Service, carts cart.Store, images customize.ImageStore, maxUpload int64) *Handler {
	return &Handler{sessions: sessions, catalog: svc, carts: carts, images: images, maxUpload: maxUpload}
}

func fail(c *gin.Context, what string, err error) {
	switch {
	case errors.Is(err, customize.ErrSessionNotFound):
		handlers.Fail(c, http.StatusNotFound, "Session de personnalisation introuvable")
	case errors.Is(err, catalog.ErrProductNotFound):
		handlers.Fail(c, http.StatusNotFound, "Produit non trouvé")
	case errors.Is(err, customize.ErrNotCustomizable),
		errors.Is(err, customize.ErrOptionUnavailable),
		errors.Is(err, customize.ErrTextNotAllowed),
		errors.Is(err, customize.ErrImageNotAllowed),
		errors.Is(err, customize.ErrInvalidQuantity):
		handlers.Fail(c, http.StatusBadRequest, err.Error())
	default:
		handlers.Internal(c, what, err)
	}
}

// session charge la session :id si elle appartient à l'utilisateur.
func (h *Handler) session(c *gin.Context) (*customize.Session, bool) {
	me, ok := handlers.User(c)
	if !ok {
		return nil, false
	}

	s, err := h.sessions.Get(c.Request.Context(), c.Param("id"))
	if err == nil && s.UserID != me.ID {
		err = customize.ErrSessionNotFound
	}
	if err != nil {
		fail(c, "Erreur lecture session", err)
		return nil, false
	}
	return s, true
}

func (h *Handler) save(c *gin.Context, s *customize.Session, status int) {
	if err := h.sessions.Save(c.Request.Context(), s); err != nil {
		handlers.Internal(c, "Erreur sauvegarde session", err)
		return
	}
	c.JSON(status, s)
}

// POST /api/customize/:productId
func (h *Handler) Start(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	p, err := h.catalog.Get(c.Request.Context(), c.Param("productId"))
	if err != nil {
		fail(c, "Erreur lecture produit", err)
		return
	}

	s, err := customize.Start(me.ID, *p)
	if err != nil {
		fail(c, "Erreur ouverture session", err)
		return
	}
	h.save(c, s, http.StatusCreated)
}

// GET /api/customize/session/:id
func (h *Handler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

// PATCH /api/customize/session/:id
// Les champs absents ne sont pas modifiés.
func (h *Handler) Update(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var input struct {
		Color    *string `json:"color"`
		Size     *string `json:"size"`
		Text     *string `json:"text"`
		Quantity *int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	steps := []func() error{}
	if input.Color != nil {
		steps = append(steps, func() error { return s.SetColor(*input.Color) })
	}
	if input.Size != nil {
		steps = append(steps, func() error { return s.SetSize(*input.Size) })
	}
	if input.Text != nil {
		steps = append(steps, func() error { return s.SetText(*input.Text) })
	}
	if input.Quantity != nil {
		steps = append(steps, func() error { return s.SetQuantity(*input.Quantity) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			fail(c, "Erreur personnalisation", err)
			return
		}
	}

	h.save(c, s, http.StatusOK)
}

// POST /api/customize/session/:id/image
func (h *Handler) UploadImage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if !s.Product.AllowImageUpload {
		fail(c, "Erreur personnalisation", customize.ErrImageNotAllowed)
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Fichier manquant")
		return
	}
	defer file.Close()

	data, contentType, _, err := customize.ReadImage(file, h.maxUpload)
	switch {
	case errors.Is(err, customize.ErrImageTooLarge):
		handlers.Fail(c, http.StatusRequestEntityTooLarge, "Image trop volumineuse")
		return
	case errors.Is(err, customize.ErrNotAnImage):
		handlers.Fail(c, http.StatusUnsupportedMediaType, "Le fichier doit être une image")
		return
	case errors.Is(err, customize.ErrEmptyImage):
		handlers.Fail(c, http.StatusBadRequest, "Fichier vide")
		return
	case err != nil:
		handlers.Internal(c, "Erreur lecture image", err)
		return
	}

	ref, err := customize.StoreImage(c.Request.Context(), h.images, "customizations/"+s.UserID, contentType, data)
	if err != nil {
		handlers.Internal(c, "Erreur stockage image", err)
		return
	}
	if err := s.SetImage(ref); err != nil {
		fail(c, "Erreur personnalisation", err)
		return
	}
	h.save(c, s, http.StatusOK)
}

// POST /api/customize/session/:id/reset
func (h *Handler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset()
	h.save(c, s, http.StatusOK)
}

// GET /api/customize/session/:id/preview
func (h *Handler) Preview(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Preview())
}

// POST /api/customize/session/:id/cart
func (h *Handler) AddToCart(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	item := s.CartItem()
	items, err := h.carts.Update(c.Request.Context(), s.UserID, func(items []models.CartItem) ([]models.CartItem, error) {
		return cart.Add(items, item)
	})
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrMissingProduct):
		handlers.Fail(c, http.StatusBadRequest, "Quantité invalide")
		return
	case errors.Is(err, cart.ErrConflict):
		handlers.Fail(c, http.StatusConflict, "Panier modifié depuis un autre appareil, réessayez")
		return
	case err != nil:
		handlers.Internal(c, "Erreur mise à jour panier", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produit personnalisé ajouté au panier",
		"cart":    cart.Summarize(items),
	})
}
