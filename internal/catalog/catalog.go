package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrProductNotFound = errors.New("produit introuvable")
	ErrInvalidProduct  = errors.New("produit invalide")
)

const (
	AllProductsKey  = "products:all"
	AllProductsTTL  = time.Hour
	ProductCacheTTL = 10 * time.Minute
)

func productKey(id string) string {
	return "product:" + id
}

// Index est un moteur de recherche plein texte sur le catalogue.
type Index interface {
	Index(ctx context.Context, p models.Product) error
	Search(ctx context.Context, q string) ([]string, error)
}

type Service struct {
	repo  repository.ProductRepository
	cache *redis.Client
	index Index
}

// NewService accepte un cache et un index nil.
func NewService(repo repository.ProductRepository, cache *redis.Client, index Index) *Service {
	return &Service{repo: repo, cache: cache, index: index}
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	var cached []models.Product
	if s.getCached(ctx, AllProductsKey, &cached) {
		return cached, nil
	}

	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("liste produits: %w", err)
	}
	s.setCached(ctx, AllProductsKey, products, AllProductsTTL)
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Product, error) {
	var cached models.Product
	if s.getCached(ctx, productKey(id), &cached) {
		return &cached, nil
	}

	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture produit %s: %w", id, err)
	}
	s.setCached(ctx, productKey(id), p, ProductCacheTTL)
	return p, nil
}

func (s *Service) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	return s.filter(ctx, func(p models.Product) bool {
		return strings.EqualFold(p.Category, category)
	})
}

func (s *Service) Customizable(ctx context.Context) ([]models.Product, error) {
	return s.filter(ctx, func(p models.Product) bool {
		return p.IsCustomizable
	})
}

// Search interroge l'index en priorité et retombe sur un filtre en mémoire
// si l'index échoue ou ne trouve rien.
func (s *Service) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)

	if s.index != nil && q != "" {
		ids, err := s.index.Search(ctx, q)
		if err != nil {
			log.Printf("⚠️ Recherche Elastic indisponible, fallback mémoire: %v", err)
		} else if len(ids) > 0 {
			products := make([]models.Product, 0, len(ids))
			for _, id := range ids {
				p, err := s.Get(ctx, id)
				if errors.Is(err, ErrProductNotFound) {
					continue
				}
				if err != nil {
					return nil, err
				}
				products = append(products, *p)
			}
			if len(products) > 0 {
				return products, nil
			}
		}
	}

	return s.filter(ctx, func(p models.Product) bool {
		return containsIgnoreCase(p.Name, q) || containsIgnoreCase(p.Description, q)
	})
}

func (s *Service) Create(ctx context.Context, p models.Product) (*models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" || p.Category == "" || p.Price <= 0 {
		return nil, ErrInvalidProduct
	}
	if !p.IsCustomizable {
		p.AvailableColors = nil
		p.AllowTextCustomization = false
		p.AllowImageUpload = false
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}

	p.ID = uuid.NewString()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.repo.Insert(ctx, &p); err != nil {
		return nil, fmt.Errorf("création produit: %w", err)
	}
	s.invalidate(ctx, p.ID)

	if s.index != nil {
		go func(p models.Product) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.index.Index(ctx, p); err != nil {
				log.Printf("❌ Erreur indexation %s: %v", p.Name, err)
			}
		}(p)
	}
	return &p, nil
}

// Reindex pousse tout le catalogue dans l'index de recherche.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("liste produits: %w", err)
	}
	for i, p := range products {
		if err := s.index.Index(ctx, p); err != nil {
			return i, fmt.Errorf("indexation %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func (s *Service) filter(ctx context.Context, keep func(models.Product) bool) ([]models.Product, error) {
	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Product{}
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) getCached(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️ Cache Redis indisponible (%s): %v", key, err)
		}
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *Service) setCached(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ Écriture cache Redis impossible (%s): %v", key, err)
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, AllProductsKey, productKey(id)).Err(); err != nil {
		log.Printf("⚠️ Invalidation cache impossible: %v", err)
	}
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
