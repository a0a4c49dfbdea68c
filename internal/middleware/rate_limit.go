package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100
	CartMaxAdds         = 20
	SearchMaxRequests   = 30
	ContactMaxMessages  = 5

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	Window           = time.Minute
	ContactWindow    = time.Hour
)

// RateLimiter compte les requêtes dans Redis. Sans client Redis, tous les
// limiteurs laissent passer.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

func passThrough(c *gin.Context) { c.Next() }

func tooMany(c *gin.Context, msg string, retry time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": int(retry.Seconds()),
	})
}

// Login limite les tentatives échouées par email, puis impose un cooldown.
func (l *RateLimiter) Login() gin.HandlerFunc {
	if l.client == nil {
		return passThrough
	}
	return func(c *gin.Context) {
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		email := strings.ToLower(strings.TrimSpace(input.Email))
		key := "login_attempts:" + email
		cooldownKey := "login_cooldown:" + email

		if ttl := l.client.TTL(ctx, cooldownKey).Val(); ttl > 0 {
			tooMany(c, fmt.Sprintf("Trop de tentatives échouées. Réessayez dans %d minutes", int(ttl.Minutes())+1), ttl)
			return
		}

		attempts, _ := l.client.Get(ctx, key).Int()
		if attempts >= LoginMaxAttempts {
			pipe := l.client.TxPipeline()
			pipe.Set(ctx, cooldownKey, "1", LoginCooldown)
			pipe.Del(ctx, key)
			pipe.Exec(ctx)

			tooMany(c, fmt.Sprintf("Trop de tentatives échouées. Compte bloqué pendant %d minutes", int(LoginCooldown.Minutes())), LoginCooldown)
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			pipe := l.client.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, LoginCooldown)
			pipe.Exec(ctx)
		case http.StatusOK:
			l.client.Del(ctx, key, cooldownKey)
		}
	}
}

// Register limite les inscriptions réussies par IP.
func (l *RateLimiter) Register() gin.HandlerFunc {
	if l.client == nil {
		return passThrough
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "register_attempts:" + c.ClientIP()

		attempts, _ := l.client.Get(ctx, key).Int()
		if attempts >= RegisterMaxAttempts {
			ttl := l.client.TTL(ctx, key).Val()
			tooMany(c, fmt.Sprintf("Trop d'inscriptions. Réessayez dans %d minutes", int(ttl.Minutes())+1), ttl)
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			pipe := l.client.Pipeline()
			pipe.Incr(ctx, key)
			pipe.Expire(ctx, key, RegisterCooldown)
			pipe.Exec(ctx)
		}
	}
}

// fixedWindow compte toutes les requêtes d'une clé sur une fenêtre fixe.
func (l *RateLimiter) fixedWindow(prefix string, max int, window time.Duration, identify func(*gin.Context) string, msg string) gin.HandlerFunc {
	if l.client == nil {
		return passThrough
	}
	return func(c *gin.Context) {
		id := identify(c)
		if id == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := prefix + id

		n, err := l.client.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if n == 1 {
			l.client.Expire(ctx, key, window)
		}

		count := int(n)
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", max))
		if count > max {
			tooMany(c, msg, window)
			return
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", max-count))
		c.Next()
	}
}

func byIP(c *gin.Context) string { return c.ClientIP() }

func byUser(c *gin.Context) string { return c.GetString(CtxUserID) }

func (l *RateLimiter) API() gin.HandlerFunc {
	return l.fixedWindow("api_requests:", APIMaxRequests, Window, byIP, "Trop de requêtes. Réessayez dans 1 minute")
}

func (l *RateLimiter) Cart() gin.HandlerFunc {
	return l.fixedWindow("cart_add:", CartMaxAdds, Window, byUser, "Trop d'ajouts au panier. Ralentissez un peu")
}

func (l *RateLimiter) Search() gin.HandlerFunc {
	return l.fixedWindow("search_requests:", SearchMaxRequests, Window, byIP, "Trop de recherches. Réessayez dans 1 minute")
}

func (l *RateLimiter) Contact() gin.HandlerFunc {
	return l.fixedWindow("contact_messages:", ContactMaxMessages, ContactWindow, byIP, "Trop de messages envoyés. Réessayez plus tard")
}
