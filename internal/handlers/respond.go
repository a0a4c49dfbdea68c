package handlers

import (
	"log"
	"net/http"

	"atelier_back_end/internal/middleware"
	"atelier_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// Fail répond {"error": msg} avec le statut donné.
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// Internal journalise l'erreur et répond un 500 générique.
func Internal(c *gin.Context, what string, err error) {
	log.Printf("❌ %s: %v", what, err)
	Fail(c, http.StatusInternalServerError, "Erreur interne du serveur")
}

// User retourne l'utilisateur authentifié ou répond 401.
func User(c *gin.Context) (models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		Fail(c, http.StatusUnauthorized, "Non authentifié")
	}
	return u, ok
}
