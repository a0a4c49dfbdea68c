package repository

import (
	"context"
	"errors"

	"atelier_back_end/internal/models"
)

var (
	ErrNotFound  = errors.New("enregistrement introuvable")
	ErrDuplicate = errors.New("enregistrement déjà existant")
)

type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

type OrderRepository interface {
	Insert(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
}

type ContactRepository interface {
	Insert(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
}
