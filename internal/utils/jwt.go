package utils

import (
	"errors"
	"fmt"
	"time"

	"atelier_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("token invalide")

// TokenClaims est le contenu utile d'un token de session.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	TokenID   string
	ExpiresAt time.Time
}

// GenerateJWT signe un token HS256 portant user_id, email, role et un jti
// unique, révocable à la déconnexion.
func GenerateJWT(user models.User, secret []byte, ttl time.Duration) (string, *TokenClaims, error) {
	tc := &TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(ttl),
	}

	claims := jwt.MapClaims{
		"user_id": tc.UserID,
		"email":   tc.Email,
		"role":    tc.Role,
		"jti":     tc.TokenID,
		"iat":     time.Now().Unix(),
		"exp":     tc.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("signature token: %w", err)
	}
	return signed, tc, nil
}

// ParseJWT vérifie la signature et l'expiration.
func ParseJWT(tokenString string, secret []byte) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	tc := &TokenClaims{}
	if tc.UserID, ok = claims["user_id"].(string); !ok || tc.UserID == "" {
		return nil, fmt.Errorf("%w: user_id manquant", ErrInvalidToken)
	}
	tc.Email, _ = claims["email"].(string)
	tc.Role, _ = claims["role"].(string)
	tc.TokenID, _ = claims["jti"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: exp manquant", ErrInvalidToken)
	}
	tc.ExpiresAt = exp.Time
	return tc, nil
}
