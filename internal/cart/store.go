package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"atelier_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	TTL = 30 * 24 * time.Hour

	EventUpdated = "updated"
	EventCleared = "cleared"

	maxUpdateRetries = 5
)

var ErrConflict = errors.New("panier modifié simultanément")

// Mutation transforme le contenu d'un panier. Une erreur annule l'écriture.
type Mutation func(items []models.CartItem) ([]models.CartItem, error)

// Store persiste le panier de chaque utilisateur et diffuse ses changements.
type Store interface {
	Load(ctx context.Context, userID string) ([]models.CartItem, error)
	Save(ctx context.Context, userID string, items []models.CartItem) error
	Clear(ctx context.Context, userID string) error
	// Update applique fn de façon atomique et renvoie le panier enregistré.
	Update(ctx context.Context, userID string, fn Mutation) ([]models.CartItem, error)
	// Watch émet EventUpdated ou EventCleared à chaque modification.
	// La fonction retournée libère l'abonnement.
	Watch(ctx context.Context, userID string) (<-chan string, func(), error)
}

func Key(userID string) string {
	return "cart:" + userID
}

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, userID string) ([]models.CartItem, error) {
	return decodeItems(s.client.Get(ctx, Key(userID)).Bytes())
}

func decodeItems(data []byte, err error) ([]models.CartItem, error) {
	if errors.Is(err, redis.Nil) {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}

	var items []models.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	return items, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, userID)
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encodage panier: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, Key(userID), data, TTL)
	pipe.Publish(ctx, Key(userID), EventUpdated)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("sauvegarde panier: %w", err)
	}
	return nil
}

// Update relit le panier sous WATCH et réessaie si une autre écriture
// est passée entre la lecture et le MULTI/EXEC.
func (s *RedisStore) Update(ctx context.Context, userID string, fn Mutation) ([]models.CartItem, error) {
	key := Key(userID)
	var saved []models.CartItem

	txf := func(tx *redis.Tx) error {
		items, err := decodeItems(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		next, err := fn(items)
		if err != nil {
			return err
		}

		var data []byte
		if len(next) > 0 {
			if data, err = json.Marshal(next); err != nil {
				return fmt.Errorf("encodage panier: %w", err)
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, key)
				pipe.Publish(ctx, key, EventCleared)
				return nil
			}
			pipe.Set(ctx, key, data, TTL)
			pipe.Publish(ctx, key, EventUpdated)
			return nil
		})
		if err != nil {
			return err
		}
		saved = next
		return nil
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if saved == nil {
			saved = []models.CartItem{}
		}
		return saved, nil
	}
	return nil, ErrConflict
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, Key(userID))
	pipe.Publish(ctx, Key(userID), EventCleared)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}

func (s *RedisStore) Watch(ctx context.Context, userID string) (<-chan string, func(), error) {
	pubsub := s.client.Subscribe(ctx, Key(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("abonnement panier: %w", err)
	}

	events := make(chan string)
	done := make(chan struct{})
	go func() {
		defer close(events)
		for msg := range pubsub.Channel() {
			select {
			case events <- msg.Payload:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}
	return events, stop, nil
}

// MemoryStore garde les paniers en mémoire quand Redis n'est pas configuré.
type MemoryStore struct {
	mu          sync.Mutex
	carts       map[string][]models.CartItem
	subscribers map[string]map[chan string]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts:       make(map[string][]models.CartItem),
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

func (s *MemoryStore) Load(_ context.Context, userID string) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) Save(ctx context.Context, userID string, items []models.CartItem) error {
	if len(items) == 0 {
		return s.Clear(ctx, userID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]models.CartItem, len(items))
	copy(stored, items)
	s.carts[userID] = stored
	s.notify(userID, EventUpdated)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, userID string, fn Mutation) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := make([]models.CartItem, len(s.carts[userID]))
	copy(current, s.carts[userID])

	next, err := fn(current)
	if err != nil {
		return nil, err
	}
	if len(next) == 0 {
		delete(s.carts, userID)
		s.notify(userID, EventCleared)
		return []models.CartItem{}, nil
	}

	stored := make([]models.CartItem, len(next))
	copy(stored, next)
	s.carts[userID] = stored
	s.notify(userID, EventUpdated)
	return next, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	s.notify(userID, EventCleared)
	return nil
}

func (s *MemoryStore) Watch(_ context.Context, userID string) (<-chan string, func(), error) {
	ch := make(chan string, 8)

	s.mu.Lock()
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[chan string]struct{})
	}
	s.subscribers[userID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[userID], ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, stop, nil
}

// notify suppose s.mu verrouillé. Un abonné trop lent perd l'événement.
func (s *MemoryStore) notify(userID, event string) {
	for ch := range s.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
