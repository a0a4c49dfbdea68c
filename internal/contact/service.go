package contact

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"
	"atelier_back_end/internal/services"

	"github.com/google/uuid"
)

var (
	ErrMissingFields = errors.New("Nom, email et message requis")
	ErrInvalidEmail  = errors.New("Adresse email invalide")
)

const notifyTimeout = 30 * time.Second

type Service struct {
	repo     repository.ContactRepository
	mailer   services.Mailer
	dispatch func(func())
}

func NewService(repo repository.ContactRepository, mailer services.Mailer) *Service {
	return &Service{repo: repo, mailer: mailer, dispatch: func(f func()) { go f() }}
}

func (s *Service) WithDispatch(dispatch func(func())) *Service {
	s.dispatch = dispatch
	return s
}

// Submit enregistre le message puis prévient l'équipe en arrière-plan.
func (s *Service) Submit(ctx context.Context, in models.ContactMessage) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: time.Now().UTC(),
	}
	if msg.Name == "" || msg.Email == "" || msg.Message == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(msg.Email); err != nil {
		return nil, ErrInvalidEmail
	}

	if err := s.repo.Insert(ctx, &msg); err != nil {
		return nil, fmt.Errorf("enregistrement message: %w", err)
	}
	log.Printf("✅ Message de contact %s reçu de %s", msg.ID, msg.Email)

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.mailer.SendContactNotification(ctx, msg); err != nil {
			log.Printf("❌ Notification du message %s non envoyée: %v", msg.ID, err)
		}
	})
	return &msg, nil
}

func (s *Service) List(ctx context.Context) ([]models.ContactMessage, error) {
	return s.repo.List(ctx)
}
