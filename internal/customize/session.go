package customize

import (
	"errors"
	"strings"
	"time"

	"atelier_back_end/internal/models"

	"github.com/google/uuid"
)

var (
	ErrNotCustomizable   = errors.New("ce produit n'est pas personnalisable")
	ErrOptionUnavailable = errors.New("option non disponible pour ce produit")
	ErrTextNotAllowed    = errors.New("ce produit n'accepte pas de texte")
	ErrImageNotAllowed   = errors.New("ce produit n'accepte pas d'image")
	ErrInvalidQuantity   = errors.New("quantité invalide")
	ErrSessionNotFound   = errors.New("session de personnalisation introuvable")
)

// Session est l'état de l'atelier pour un produit et un utilisateur.
type Session struct {
	ID            string               `json:"id"`
	UserID        string               `json:"userId"`
	Product       models.Product       `json:"product"`
	Customization models.Customization `json:"customization"`
	Quantity      int                  `json:"quantity"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Start ouvre une session avec la première couleur et la première taille
// proposées.
func Start(userID string, p models.Product) (*Session, error) {
	if !p.IsCustomizable {
		return nil, ErrNotCustomizable
	}

	now := time.Now().UTC()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Product:   p,
		CreatedAt: now,
	}
	s.Reset()
	return s, nil
}

// Reset revient aux valeurs par défaut et efface texte et image.
func (s *Session) Reset() {
	s.Customization = models.Customization{}
	if len(s.Product.AvailableColors) > 0 {
		s.Customization.Color = s.Product.AvailableColors[0]
	}
	if len(s.Product.AvailableSizes) > 0 {
		s.Customization.Size = s.Product.AvailableSizes[0]
	}
	s.Quantity = 1
	s.touch()
}

func (s *Session) SetColor(color string) error {
	if !s.Product.HasColor(color) {
		return ErrOptionUnavailable
	}
	s.Customization.Color = color
	s.touch()
	return nil
}

func (s *Session) SetSize(size string) error {
	if !s.Product.HasSize(size) {
		return ErrOptionUnavailable
	}
	s.Customization.Size = size
	s.touch()
	return nil
}

// SetText accepte toujours une chaîne vide, qui efface le texte.
func (s *Session) SetText(text string) error {
	text = strings.TrimSpace(text)
	if text != "" && !s.Product.AllowTextCustomization {
		return ErrTextNotAllowed
	}
	s.Customization.Text = text
	s.touch()
	return nil
}

func (s *Session) SetImage(ref string) error {
	if ref != "" && !s.Product.AllowImageUpload {
		return ErrImageNotAllowed
	}
	s.Customization.Image = ref
	s.touch()
	return nil
}

func (s *Session) SetQuantity(q int) error {
	if q < 1 {
		return ErrInvalidQuantity
	}
	s.Quantity = q
	s.touch()
	return nil
}

// CartItem fige l'état courant en ligne de panier.
func (s *Session) CartItem() models.CartItem {
	c := s.Customization
	return models.CartItem{
		ProductID:     s.Product.ID,
		Name:          s.Product.Name,
		Price:         s.Product.Price,
		Image:         s.Product.Image,
		Quantity:      s.Quantity,
		Customization: &c,
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
