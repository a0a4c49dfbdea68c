package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"

	"github.com/redis/go-redis/v9"
)

const UserCacheTTL = 5 * time.Minute

func userKey(id string) string {
	return "user:" + id
}

// CachedUsers met en cache Redis les lectures par identifiant. Toute
// écriture invalide l'entrée.
type CachedUsers struct {
	repository.UserRepository
	client *redis.Client
}

func NewCachedUsers(repo repository.UserRepository, client *redis.Client) *CachedUsers {
	return &CachedUsers{UserRepository: repo, client: client}
}

// cachedUser garde le hash, que models.User ne sérialise pas.
type cachedUser struct {
	models.User
	Hash string `json:"hash"`
}

func (c *CachedUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if data, err := c.client.Get(ctx, userKey(id)).Bytes(); err == nil {
		var cu cachedUser
		if json.Unmarshal(data, &cu) == nil {
			u := cu.User
			u.Password = cu.Hash
			return &u, nil
		}
	}

	u, err := c.UserRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(cachedUser{User: *u, Hash: u.Password}); err == nil {
		if err := c.client.Set(ctx, userKey(id), data, UserCacheTTL).Err(); err != nil {
			log.Printf("⚠️ Écriture cache utilisateur impossible: %v", err)
		}
	}
	return u, nil
}

func (c *CachedUsers) Update(ctx context.Context, u *models.User) error {
	if err := c.UserRepository.Update(ctx, u); err != nil {
		return err
	}
	c.client.Del(ctx, userKey(u.ID))
	return nil
}
