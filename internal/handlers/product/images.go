package product

import (
	"context"
	"errors"
	"net/http"
	"time"

	"atelier_back_end/internal/customize"
	"atelier_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
)

const signedURLTTL = 15 * time.Minute

type ImageStorage interface {
	PutImage(ctx context.Context, prefix, contentType string, data []byte) (string, error)
	SignedURL(ctx context.Context, objectOrURL string, ttl time.Duration) (string, error)
}

// POST /api/products/images (admin)
func (h *Handler) UploadImage(c *gin.Context) {
	if h.images == nil {
		handlers.Fail(c, http.StatusServiceUnavailable, "Stockage d'images non configuré")
		return
	}

	file, _, err := c.Request.FormFile("file")
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

	ctx := c.Request.Context()
	url, err := h.images.PutImage(ctx, "products", contentType, data)
	if err != nil {
		handlers.Internal(c, "Erreur upload MinIO", err)
		return
	}

	resp := gin.H{
		"message":   "✅ Image uploadée avec succès",
		"image_url": url,
	}
	if signed, err := h.images.SignedURL(ctx, url, signedURLTTL); err == nil {
		resp["signed_url"] = signed
	}
	c.JSON(http.StatusCreated, resp)
}
