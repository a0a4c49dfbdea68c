package handlers

import (
	"errors"
	"net/http"

	"atelier_back_end/internal/contact"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contact *contact.Service
}

func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{contact: svc}
}

// POST /api/contact
func (h *ContactHandler) Submit(c *gin.Context) {
	var input models.ContactMessage
	if err := c.ShouldBindJSON(&input); err != nil {
		Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	msg, err := h.contact.Submit(c.Request.Context(), input)
	switch {
	case errors.Is(err, contact.ErrMissingFields), errors.Is(err, contact.ErrInvalidEmail):
		Fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		Internal(c, "Erreur enregistrement message", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Message envoyé, nous vous répondrons rapidement",
		"contact": msg,
	})
}

// GET /api/admin/contact
func (h *ContactHandler) List(c *gin.Context) {
	msgs, err := h.contact.List(c.Request.Context())
	if err != nil {
		Internal(c, "Erreur lecture messages", err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
