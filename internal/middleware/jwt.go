package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"

	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// Clés posées dans le contexte gin par le middleware d'authentification.
const (
	CtxUserID    = "user_id"
	CtxEmail     = "email"
	CtxRole      = "role"
	CtxTokenID   = "jti"
	CtxExpiresAt = "token_exp"
)

type Auth struct {
	secret    []byte
	blacklist cache.TokenBlacklist
}

func NewAuth(secret []byte, blacklist cache.TokenBlacklist) *Auth {
	return &Auth{secret: secret, blacklist: blacklist}
}

// bearer lit le token de l'en-tête Authorization. Les navigateurs ne
// pouvant pas poser d'en-tête sur une websocket, ?token= est aussi accepté.
func bearer(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" && c.IsWebsocket() {
			return t, ""
		}
		return "", "Token manquant"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "Format Authorization invalide"
	}
	return parts[1], ""
}

// authenticate retourne un message d'erreur vide si la requête porte un
// token valide, non révoqué.
func (a *Auth) authenticate(c *gin.Context) (string, bool) {
	token, msg := bearer(c)
	if token == "" {
		return msg, false
	}

	claims, err := utils.ParseJWT(token, a.secret)
	if err != nil {
		log.Printf("❌ Erreur parsing JWT: %v", err)
		return "Token invalide", false
	}

	if claims.TokenID != "" && a.blacklist.IsRevoked(c.Request.Context(), claims.TokenID) {
		return "Session expirée, veuillez vous reconnecter", false
	}

	c.Set(CtxUserID, claims.UserID)
	c.Set(CtxEmail, claims.Email)
	c.Set(CtxRole, claims.Role)
	c.Set(CtxTokenID, claims.TokenID)
	c.Set(CtxExpiresAt, claims.ExpiresAt)
	return "", true
}

// Required rejette toute requête sans session valide.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if msg, ok := a.authenticate(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		c.Next()
	}
}

// Optional renseigne l'utilisateur s'il est connecté, sans jamais bloquer.
// Le handler décide quoi faire d'un visiteur anonyme.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			a.authenticate(c)
		}
		c.Next()
	}
}

// CurrentUser reconstruit l'utilisateur authentifié depuis le contexte.
func CurrentUser(c *gin.Context) (models.User, bool) {
	userID := c.GetString(CtxUserID)
	if userID == "" {
		return models.User{}, false
	}
	return models.User{
		ID:    userID,
		Email: c.GetString(CtxEmail),
		Role:  c.GetString(CtxRole),
	}, true
}

// TokenExpiry retourne le jti et l'expiration du token courant.
func TokenExpiry(c *gin.Context) (string, time.Time) {
	return c.GetString(CtxTokenID), c.GetTime(CtxExpiresAt)
}
