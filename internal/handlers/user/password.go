package user

import (
	"net/http"

	"atelier_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
)

// GET /api/users/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	u, err := h.auth.Profile(c.Request.Context(), me.ID)
	if err != nil {
		failAuth(c, "Erreur lecture profil", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// PUT /api/users/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	var input struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	u, err := h.auth.UpdateProfile(c.Request.Context(), me.ID, input.Name, input.Email)
	if err != nil {
		failAuth(c, "Erreur mise à jour profil", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "user": u})
}

// PUT /api/users/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	var input struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		handlers.Fail(c, http.StatusBadRequest, "Données invalides")
		return
	}

	err := h.auth.ChangePassword(c.Request.Context(), me.ID, input.CurrentPassword, input.NewPassword, input.ConfirmPassword)
	if err != nil {
		failAuth(c, "Erreur changement mot de passe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe changé avec succès"})
}
