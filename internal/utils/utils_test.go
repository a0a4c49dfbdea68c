package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"atelier_back_end/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=4$"))

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong horse", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, _ := HashPassword("correct horse")
	assert.NotEqual(t, hash, other, "le salt doit varier")
	assert.False(t, NeedsRehash(hash))
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, bad := range []string{"", "plain", "$2a$10$abcdefghijklmnopqrstuv", "$argon2id$v=19$m=1,t=1,p=1$@@$@@"} {
		_, err := VerifyPassword("x", bad)
		assert.ErrorIs(t, err, ErrInvalidHash, bad)
		assert.True(t, NeedsRehash(bad))
	}
}

func TestNeedsRehashOnOldParameters(t *testing.T) {
	old := "$argon2id$v=19$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g"
	assert.True(t, NeedsRehash(old))
}

func TestJWTRoundTrip(t *testing.T) {
	user := models.User{ID: "u1", Email: "jane@example.com", Role: models.RoleAdmin}

	token, issued, err := GenerateJWT(user, secret, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	claims, err := ParseJWT(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, claims.ExpiresAt, time.Second)
}

func TestParseJWTRejects(t *testing.T) {
	user := models.User{ID: "u1", Email: "jane@example.com"}

	token, _, _ := GenerateJWT(user, secret, time.Hour)
	_, err := ParseJWT(token, []byte("autre-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, _, _ := GenerateJWT(user, secret, -time.Minute)
	_, err = ParseJWT(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "u1"})
	signed, _ := noExp.SignedString(secret)
	_, err = ParseJWT(signed, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseJWT("pas.un.token", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOrderQRCode(t *testing.T) {
	order := models.Order{ID: "o-123", Total: 30.98, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, "ATELIER\nCMD:o-123\nTOTAL:EUR30.98\nDATE:2024-05-01", OrderReference(order))

	png, err := OrderQRCode(order)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestOrderConfirmationHTML(t *testing.T) {
	order := models.Order{
		ID:       "o-1",
		Subtotal: 24.99,
		Shipping: 5.99,
		Total:    30.98,
		Items: []models.OrderItem{{
			Name: "Classic T-Shirt", Price: 24.99, Quantity: 1,
			Customization: &models.Customization{Color: "black", Text: "<b>Hi</b>"},
		}},
		ShippingAddress: models.ShippingAddress{Name: "Jane", City: "Lyon"},
	}

	html, err := OrderConfirmationHTML(order, "Jane")
	require.NoError(t, err)
	assert.Contains(t, html, "Classic T-Shirt")
	assert.Contains(t, html, "30.98€")
	assert.Contains(t, html, "5.99€")
	assert.NotContains(t, html, "<b>Hi</b>")
	assert.Contains(t, html, "&lt;b&gt;Hi&lt;/b&gt;")
}

func TestFreeShippingRendersAsOffered(t *testing.T) {
	html, err := OrderConfirmationHTML(models.Order{ID: "o-2", Subtotal: 60, Total: 60}, "Bob")
	require.NoError(t, err)
	assert.Contains(t, html, "Offerte")
}

func TestContactNotificationHTML(t *testing.T) {
	html, err := ContactNotificationHTML(models.ContactMessage{
		Name: "Jane", Email: "jane@example.com", Message: "Bonjour", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "jane@example.com")
	assert.Contains(t, html, "Bonjour")
}

func TestOrderStatusHTML(t *testing.T) {
	html, err := OrderStatusHTML(models.Order{ID: "o-3", Status: models.OrderShipped})
	require.NoError(t, err)
	assert.Contains(t, html, "Commande expédiée")
	assert.Contains(t, OrderStatusSubject(models.OrderShipped), "expédiée")
}
