package cache

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// --- Blacklist JWT (révocation avant expiration) ---

// TokenBlacklist mémorise les jti révoqués jusqu'à leur expiration.
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) bool
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("blacklist:%s", tokenID)
}

type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(client *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{client: client}
}

func (b *RedisBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, blacklistKey(tokenID), "revoked", ttl).Err()
}

// IsRevoked considère le token valide si Redis ne répond pas.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, tokenID string) bool {
	exists, err := b.client.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		log.Printf("⚠️ Erreur vérification blacklist: %v", err)
		return false
	}
	return exists > 0
}

type MemoryBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{revoked: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	for id, exp := range b.revoked {
		if now.After(exp) {
			delete(b.revoked, id)
		}
	}
	b.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, tokenID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	exp, ok := b.revoked[tokenID]
	return ok && time.Now().Before(exp)
}
