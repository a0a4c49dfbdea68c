package user

import (
	"errors"
	"net/http"

	"atelier_back_end/internal/auth"
	"atelier_back_end/internal/handlers"
	"atelier_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

// authStatus traduit les erreurs du service d'authentification.
func authStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, auth.ErrMissingFields),
		errors.Is(err, auth.ErrMissingCredentials),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusBadRequest, true
	case errors.Is(err, auth.ErrBadCredentials), errors.Is(err, auth.ErrWrongPassword):
		return http.StatusUnauthorized, true
	case errors.Is(err, auth.ErrEmailReserved):
		return http.StatusForbidden, true
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict, true
	}
	return http.StatusInternalServerError, false
}

func failAuth(c *gin.Context, what string, err error) {
	if status, ok := authStatus(err); ok {
		handlers.Fail(c, status, err.Error())
		return
	}
	handlers.Internal(c, what, err)
}

// POST /api/users/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	sess, err := h.auth.Register(c.Request.Context(), input.Name, input.Email, input.Password)
	if err != nil {
		failAuth(c, "Erreur inscription", err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// POST /api/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	sess, err := h.auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		failAuth(c, "Erreur connexion", err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

// POST /api/users/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, exp := middleware.TokenExpiry(c)
	if err := h.auth.Logout(c.Request.Context(), jti, exp); err != nil {
		handlers.Internal(c, "Erreur révocation token", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}
