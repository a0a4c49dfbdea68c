package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"atelier_back_end/internal/models"
)

type MemoryProducts struct {
	mu       sync.RWMutex
	products []models.Product
}

func NewMemoryProducts(seed []models.Product) *MemoryProducts {
	products := make([]models.Product, len(seed))
	copy(products, seed)
	return &MemoryProducts{products: products}
}

func (r *MemoryProducts) FindAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *MemoryProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryProducts) Insert(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.products {
		if existing.ID == p.ID {
			return ErrDuplicate
		}
	}
	r.products = append(r.products, *p)
	return nil
}

type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{byID: make(map[string]models.User), byEmail: make(map[string]string)}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryUsers) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(u.Email)
	if _, taken := r.byEmail[email]; taken {
		return ErrDuplicate
	}
	r.byID[u.ID] = *u
	r.byEmail[email] = u.ID
	return nil
}

func (r *MemoryUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}

	oldEmail := normalizeEmail(current.Email)
	newEmail := normalizeEmail(u.Email)
	if oldEmail != newEmail {
		if _, taken := r.byEmail[newEmail]; taken {
			return ErrDuplicate
		}
		delete(r.byEmail, oldEmail)
		r.byEmail[newEmail] = u.ID
	}
	r.byID[u.ID] = *u
	return nil
}

type MemoryOrders struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

func NewMemoryOrders() *MemoryOrders {
	return &MemoryOrders{orders: make(map[string]models.Order)}
}

func (r *MemoryOrders) Insert(_ context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return ErrDuplicate
	}
	r.orders[o.ID] = *o
	return nil
}

func (r *MemoryOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

// FindByUser retourne les commandes de l'utilisateur, les plus récentes
// en premier.
func (r *MemoryOrders) FindByUser(_ context.Context, userID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Order{}
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryOrders) UpdateStatus(_ context.Context, id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.orders[id] = o
	return nil
}

type MemoryContacts struct {
	mu       sync.Mutex
	messages []models.ContactMessage
}

func NewMemoryContacts() *MemoryContacts {
	return &MemoryContacts{}
}

func (r *MemoryContacts) Insert(_ context.Context, m *models.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, *m)
	return nil
}

func (r *MemoryContacts) List(_ context.Context) ([]models.ContactMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.ContactMessage, len(r.messages))
	copy(out, r.messages)
	return out, nil
}
