package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"atelier_back_end/internal/cache"
	"atelier_back_end/internal/models"
	"atelier_back_end/internal/repository"
	"atelier_back_end/internal/utils"

	"github.com/google/uuid"
)

var (
	ErrMissingFields      = errors.New("Veuillez remplir tous les champs")
	ErrMissingCredentials = errors.New("Email et mot de passe requis")
	ErrEmailTaken         = errors.New("Un compte avec cet email existe déjà")
	ErrBadCredentials     = errors.New("Email ou mot de passe incorrect")
	ErrPasswordMismatch   = errors.New("Les mots de passe ne correspondent pas")
	ErrWrongPassword      = errors.New("Mot de passe actuel incorrect")
	ErrUserNotFound       = errors.New("Utilisateur introuvable")
	ErrEmailReserved      = errors.New("Cette adresse email est réservée")
)

// Session est ce que reçoit le client après connexion ou inscription.
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type Service struct {
	users     repository.UserRepository
	blacklist cache.TokenBlacklist
	secret    []byte
	ttl       time.Duration
	isAdmin   func(email string) bool
}

func NewService(users repository.UserRepository, blacklist cache.TokenBlacklist, secret []byte, ttl time.Duration, isAdmin func(string) bool) *Service {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Service{users: users, blacklist: blacklist, secret: secret, ttl: ttl, isAdmin: isAdmin}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if s.isAdmin(email) {
		return nil, ErrEmailReserved
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("recherche utilisateur: %w", err)
	}

	u, err := s.create(ctx, name, email, password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Nouveau compte: %s", u.Email)
	return s.issue(*u)
}

// Login vérifie le mot de passe d'un compte existant. Un email inconnu
// crée le compte à la volée, nommé d'après la partie locale de l'adresse,
// sauf pour les adresses admin qui doivent avoir été provisionnées.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	u, err := s.users.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if s.isAdmin(email) {
			return nil, ErrBadCredentials
		}
		if u, err = s.create(ctx, localPart(email), email, password, models.RoleCustomer); err != nil {
			return nil, err
		}
		log.Printf("✅ Compte créé à la connexion: %s", u.Email)
	case err != nil:
		return nil, fmt.Errorf("recherche utilisateur: %w", err)
	default:
		ok, err := utils.VerifyPassword(password, u.Password)
		if err != nil || !ok {
			return nil, ErrBadCredentials
		}
		s.rehash(ctx, u, password)
	}

	return s.issue(*u)
}

// Logout révoque le token jusqu'à son expiration naturelle.
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	return s.blacklist.Revoke(ctx, tokenID, time.Until(expiresAt))
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile modifie le nom et/ou l'email. Un champ vide est ignoré.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email string) (*models.User, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" && email == "" {
		return nil, ErrMissingFields
	}
	if name != "" {
		u.Name = name
	}
	if email != "" && email != u.Email {
		if s.isAdmin(email) {
			return nil, ErrEmailReserved
		}
		u.Email = email
	}
	u.UpdatedAt = time.Now().UTC()

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("mise à jour profil: %w", err)
	}
	return u, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next, confirm string) error {
	if current == "" || next == "" || confirm == "" {
		return ErrMissingFields
	}
	if next != confirm {
		return ErrPasswordMismatch
	}

	u, err := s.Profile(ctx, userID)
	if err != nil {
		return err
	}
	if ok, err := utils.VerifyPassword(current, u.Password); err != nil || !ok {
		return ErrWrongPassword
	}

	if u.Password, err = utils.HashPassword(next); err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("mise à jour mot de passe: %w", err)
	}
	return nil
}

// ProvisionAdmins crée les comptes admin absents avec le mot de passe
// initial. Un compte client déjà présent sur une adresse admin n'est
// jamais promu.
func (s *Service) ProvisionAdmins(ctx context.Context, emails []string, password string) (int, error) {
	created := 0
	for _, email := range emails {
		email = normalizeEmail(email)
		if email == "" {
			continue
		}

		u, err := s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if u.Role != models.RoleAdmin {
				log.Printf("⚠️ %s appartient à un compte client, non promu", email)
			}
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return created, fmt.Errorf("recherche admin %s: %w", email, err)
		}

		if password == "" {
			log.Printf("⚠️ ADMIN_PASSWORD vide — compte admin %s non créé", email)
			continue
		}
		name := localPart(email)
		if _, err := s.create(ctx, name, email, password, models.RoleAdmin); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Service) create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("création utilisateur: %w", err)
	}
	return u, nil
}

// rehash réencode le mot de passe quand les paramètres Argon2 ont changé.
func (s *Service) rehash(ctx context.Context, u *models.User, password string) {
	if !utils.NeedsRehash(u.Password) {
		return
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return
	}
	u.Password = hash
	u.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		log.Printf("⚠️ Mise à jour du compte %s impossible: %v", u.ID, err)
	}
}

func (s *Service) issue(u models.User) (*Session, error) {
	token, claims, err := utils.GenerateJWT(u, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: claims.ExpiresAt, User: u}, nil
}
