package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier_back_end/internal/models"

	"github.com/gocql/gocql"
)

// SessionSource fournit la session du keyspace d'un domaine.
type SessionSource func() (*gocql.Session, error)

const (
	productColumns = `product_id, name, description, price, category, image, images, is_customizable,
		available_colors, available_sizes, allow_text, allow_image, created_at, updated_at`

	userColumns = `user_id, email, name, role, password, created_at, updated_at`

	orderColumns = `order_id, user_id, items, subtotal, shipping, total, status, shipping_address, created_at, updated_at`
)

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// =============================================
// PRODUITS
// =============================================

type ScyllaProducts struct {
	session SessionSource
}

func NewScyllaProducts(session SessionSource) *ScyllaProducts {
	return &ScyllaProducts{session: session}
}

func scanProduct(scan func(dest ...interface{}) error) (models.Product, error) {
	var p models.Product
	err := scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Image, &p.Images,
		&p.IsCustomizable, &p.AvailableColors, &p.AvailableSizes, &p.AllowTextCustomization,
		&p.AllowImageUpload, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *ScyllaProducts) FindAll(ctx context.Context) ([]models.Product, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()
	scanner := iter.Scanner()

	products := []models.Product{}
	for scanner.Next() {
		p, err := scanProduct(scanner.Scan)
		if err != nil {
			return nil, fmt.Errorf("lecture produit: %w", err)
		}
		products = append(products, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lecture produits: %w", err)
	}
	return products, nil
}

func (r *ScyllaProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	q := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).WithContext(ctx)
	p, err := scanProduct(q.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ScyllaProducts) Insert(ctx context.Context, p *models.Product) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	applied, err := session.Query(`INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		p.ID, p.Name, p.Description, p.Price, p.Category, p.Image, p.Images, p.IsCustomizable,
		p.AvailableColors, p.AvailableSizes, p.AllowTextCustomization, p.AllowImageUpload,
		p.CreatedAt, p.UpdatedAt).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("insertion produit: %w", err)
	}
	if !applied {
		return ErrDuplicate
	}
	return nil
}

// =============================================
// UTILISATEURS
// =============================================

type ScyllaUsers struct {
	session SessionSource
}

func NewScyllaUsers(session SessionSource) *ScyllaUsers {
	return &ScyllaUsers{session: session}
}

func (r *ScyllaUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	var u models.User
	err = session.Query(`SELECT `+userColumns+` FROM users WHERE user_id = ?`, id).WithContext(ctx).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *ScyllaUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	var userID string
	err = session.Query(`SELECT user_id FROM users_by_email WHERE email = ?`, normalizeEmail(email)).
		WithContext(ctx).Scan(&userID)
	if err != nil {
		return nil, notFound(err)
	}
	return r.FindByID(ctx, userID)
}

// Insert réserve d'abord l'email via une transaction légère pour garantir
// son unicité.
func (r *ScyllaUsers) Insert(ctx context.Context, u *models.User) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	email := normalizeEmail(u.Email)
	applied, err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
		email, u.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation email: %w", err)
	}
	if !applied {
		return ErrDuplicate
	}

	err = session.Query(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, email, u.Name, u.Role, u.Password, u.CreatedAt, u.UpdatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion utilisateur: %w", err)
	}
	return nil
}

func (r *ScyllaUsers) Update(ctx context.Context, u *models.User) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	current, err := r.FindByID(ctx, u.ID)
	if err != nil {
		return err
	}

	newEmail := normalizeEmail(u.Email)
	if oldEmail := normalizeEmail(current.Email); oldEmail != newEmail {
		applied, err := session.Query(`INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`,
			newEmail, u.ID).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return fmt.Errorf("réservation email: %w", err)
		}
		if !applied {
			return ErrDuplicate
		}
		if err := session.Query(`DELETE FROM users_by_email WHERE email = ?`, oldEmail).WithContext(ctx).Exec(); err != nil {
			return fmt.Errorf("libération ancien email: %w", err)
		}
	}

	err = session.Query(`UPDATE users SET email = ?, name = ?, role = ?, password = ?, updated_at = ? WHERE user_id = ?`,
		newEmail, u.Name, u.Role, u.Password, u.UpdatedAt, u.ID).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("mise à jour utilisateur: %w", err)
	}
	return nil
}

// =============================================
// COMMANDES
// =============================================

type ScyllaOrders struct {
	session SessionSource
}

func NewScyllaOrders(session SessionSource) *ScyllaOrders {
	return &ScyllaOrders{session: session}
}

func (r *ScyllaOrders) Insert(ctx context.Context, o *models.Order) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encodage articles: %w", err)
	}
	address, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encodage adresse: %w", err)
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO orders (`+orderColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, string(items), o.Subtotal, o.Shipping, o.Total, string(o.Status),
		string(address), o.CreatedAt, o.UpdatedAt)
	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		o.UserID, o.CreatedAt, o.ID)

	if err := session.ExecuteBatch(batch); err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	return nil
}

func (r *ScyllaOrders) FindByID(ctx context.Context, id string) (*models.Order, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	var (
		o       models.Order
		status  string
		items   string
		address string
	)
	err = session.Query(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, id).WithContext(ctx).
		Scan(&o.ID, &o.UserID, &items, &o.Subtotal, &o.Shipping, &o.Total, &status, &address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	o.Status = models.OrderStatus(status)
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return nil, fmt.Errorf("décodage articles: %w", err)
	}
	if err := json.Unmarshal([]byte(address), &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("décodage adresse: %w", err)
	}
	return &o, nil
}

// FindByUser s'appuie sur orders_by_user, trié par date décroissante.
func (r *ScyllaOrders) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID).WithContext(ctx).Iter()
	var ids []string
	var id string
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture commandes: %w", err)
	}

	orders := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.FindByID(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, nil
}

func (r *ScyllaOrders) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	applied, err := session.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ? IF EXISTS`,
		string(status), time.Now().UTC(), id).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("mise à jour statut: %w", err)
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// =============================================
// MESSAGES DE CONTACT
// =============================================

type ScyllaContacts struct {
	session SessionSource
}

func NewScyllaContacts(session SessionSource) *ScyllaContacts {
	return &ScyllaContacts{session: session}
}

func (r *ScyllaContacts) Insert(ctx context.Context, m *models.ContactMessage) error {
	session, err := r.session()
	if err != nil {
		return err
	}

	err = session.Query(`INSERT INTO contact_messages (message_id, name, email, subject, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Name, strings.TrimSpace(m.Email), m.Subject, m.Message, m.CreatedAt).WithContext(ctx).Exec()
	if err != nil {
		return fmt.Errorf("insertion message: %w", err)
	}
	return nil
}

func (r *ScyllaContacts) List(ctx context.Context) ([]models.ContactMessage, error) {
	session, err := r.session()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT message_id, name, email, subject, message, created_at FROM contact_messages`).
		WithContext(ctx).Iter()

	messages := []models.ContactMessage{}
	var m models.ContactMessage
	for iter.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt) {
		messages = append(messages, m)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("lecture messages: %w", err)
	}
	return messages, nil
}
