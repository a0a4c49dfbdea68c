package middleware

import (
	"net/http"

	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin". À placer
// après Auth.Required.
func RequireAdmin(c *gin.Context) {
	if c.GetString(CtxRole) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}
