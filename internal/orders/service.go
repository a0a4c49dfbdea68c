package orders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"
	"atelier_back_end/internal/services"
	"atelier_back_end/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart      = errors.New("Votre panier est vide")
	ErrNoItems        = errors.New("La commande ne contient aucun article")
	ErrInvalidItem    = errors.New("Article de commande invalide")
	ErrInvalidAddress = errors.New("Adresse de livraison incomplète")
	ErrOrderNotFound  = errors.New("Commande non trouvée")
	ErrInvalidStatus  = errors.New("Statut de commande invalide")
)

// StatusOpen regroupe les commandes en attente et en préparation.
const StatusOpen = "open"

const mailTimeout = 30 * time.Second

// ProductLookup résout le prix et le nom courants d'un produit.
type ProductLookup interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

type Service struct {
	repo     repository.OrderRepository
	carts    cart.Store
	products ProductLookup
	users    repository.UserRepository
	events   services.EventPublisher
	mailer   services.Mailer
	dispatch func(func())
}

func NewService(repo repository.OrderRepository, carts cart.Store, products ProductLookup, users repository.UserRepository, events services.EventPublisher, mailer services.Mailer) *Service {
	return &Service{
		repo:     repo,
		carts:    carts,
		products: products,
		users:    users,
		events:   events,
		mailer:   mailer,
		dispatch: func(f func()) { go f() },
	}
}

// WithDispatch remplace le lancement asynchrone des e-mails.
func (s *Service) WithDispatch(dispatch func(func())) *Service {
	s.dispatch = dispatch
	return s
}

func validateAddress(addr models.ShippingAddress) error {
	if missing := addr.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, missing)
	}
	return nil
}

// Checkout transforme le panier de l'utilisateur en commande. Le panier
// n'est vidé qu'une fois la commande enregistrée.
func (s *Service) Checkout(ctx context.Context, user models.User, addr models.ShippingAddress) (*models.Order, error) {
	items, err := s.carts.Load(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	order := build(user.ID, items, addr)
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("enregistrement commande: %w", err)
	}
	log.Printf("✅ Commande %s créée pour %s (%.2f €)", order.ID, user.ID, order.Total)

	if err := s.carts.Clear(ctx, user.ID); err != nil {
		log.Printf("⚠️ Panier de %s non vidé après commande %s: %v", user.ID, order.ID, err)
	}

	s.placed(ctx, user, *order)
	return order, nil
}

// Create enregistre une commande à partir d'articles explicites. Les prix
// et noms viennent du catalogue, jamais du client.
func (s *Service) Create(ctx context.Context, user models.User, items []models.OrderItem, addr models.ShippingAddress) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}

	var lines []models.CartItem
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			return nil, ErrInvalidItem
		}
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidItem, it.ProductID)
		}
		lines, err = cart.Add(lines, models.CartItem{
			ProductID:     p.ID,
			Name:          p.Name,
			Price:         p.Price,
			Image:         p.Image,
			Quantity:      it.Quantity,
			Customization: it.Customization,
		})
		if err != nil {
			return nil, ErrInvalidItem
		}
	}

	order := build(user.ID, lines, addr)
	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, fmt.Errorf("enregistrement commande: %w", err)
	}
	log.Printf("✅ Commande %s créée pour %s (%.2f €)", order.ID, user.ID, order.Total)

	s.placed(ctx, user, *order)
	return order, nil
}

func build(userID string, items []models.CartItem, addr models.ShippingAddress) *models.Order {
	summary := cart.Summarize(items)

	orderItems := make([]models.OrderItem, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, models.OrderItem{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         it.Price,
			Image:         it.Image,
			Quantity:      it.Quantity,
			Customization: it.Customization,
		})
	}

	now := time.Now().UTC()
	return &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           orderItems,
		Subtotal:        summary.Subtotal,
		Shipping:        summary.Shipping,
		Total:           summary.Total,
		Status:          models.OrderPending,
		ShippingAddress: addr,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (s *Service) placed(ctx context.Context, user models.User, order models.Order) {
	if err := s.events.PublishEvent(ctx, services.TopicOrderPlaced, order.ID, order); err != nil {
		log.Printf("⚠️ Événement %s non publié pour %s: %v", services.TopicOrderPlaced, order.ID, err)
	}

	to, name := user.Email, user.Name
	if u, err := s.users.FindByID(ctx, user.ID); err == nil {
		to, name = u.Email, u.Name
	}
	if to == "" {
		return
	}

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(ctx, to, name, order); err != nil {
			log.Printf("❌ E-mail de confirmation %s non envoyé: %v", order.ID, err)
		}
	})
}

// ParseStatusFilter valide le filtre de la liste des commandes. Un filtre
// vide ne filtre rien.
func ParseStatusFilter(filter string) ([]models.OrderStatus, error) {
	switch filter {
	case "":
		return nil, nil
	case StatusOpen:
		return []models.OrderStatus{models.OrderPending, models.OrderProcessing}, nil
	}
	status := models.OrderStatus(filter)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return []models.OrderStatus{status}, nil
}

func FilterByStatus(orders []models.Order, statuses []models.OrderStatus) []models.Order {
	if len(statuses) == 0 {
		return orders
	}
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		for _, st := range statuses {
			if o.Status == st {
				out = append(out, o)
				break
			}
		}
	}
	return out
}

// List retourne les commandes de l'utilisateur, les plus récentes d'abord.
func (s *Service) List(ctx context.Context, userID, filter string) ([]models.Order, error) {
	statuses, err := ParseStatusFilter(filter)
	if err != nil {
		return nil, err
	}
	all, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lecture commandes: %w", err)
	}
	return FilterByStatus(all, statuses), nil
}

// Get ne retourne que les commandes appartenant à l'utilisateur.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Order, error) {
	o, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lecture commande: %w", err)
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus applique le statut tel quel, sans règle de transition.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("mise à jour statut: %w", err)
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lecture commande: %w", err)
	}
	log.Printf("✅ Commande %s passée au statut %s", o.ID, o.Status)

	if err := s.events.PublishEvent(ctx, services.TopicOrderStatusChanged, o.ID, o); err != nil {
		log.Printf("⚠️ Événement %s non publié pour %s: %v", services.TopicOrderStatusChanged, o.ID, err)
	}

	if u, err := s.users.FindByID(ctx, o.UserID); err == nil {
		order := *o
		s.dispatch(func() {
			ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
			defer cancel()
			if err := s.mailer.SendOrderStatus(ctx, u.Email, order); err != nil {
				log.Printf("❌ E-mail de statut %s non envoyé: %v", order.ID, err)
			}
		})
	}
	return o, nil
}

// QRCode retourne le QR code PNG d'une commande de l'utilisateur.
func (s *Service) QRCode(ctx context.Context, userID, id string) ([]byte, error) {
	o, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return utils.OrderQRCode(*o)
}
