package devapi

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

// AuthService implements registration and login against the Store.
type AuthService struct {
	store     *Store
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(store *Store, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates a member account. Registration never signs the user in.
func (s *AuthService) Register(_ context.Context, in ports.RegisterPayload) (domain.Identity, error) {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return domain.Identity{}, errMissingFields
	}
	return s.createAccount(in, domain.RoleMember)
}

func (s *AuthService) createAccount(in ports.RegisterPayload, role domain.Role) (domain.Identity, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Identity{}, err
	}
	return s.store.createAccount(domain.Identity{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
		Role:  role,
	}, hash)
}

// Login checks the password and issues a bearer token.
func (s *AuthService) Login(_ context.Context, email, password string) (string, domain.Identity, error) {
	if email == "" || password == "" {
		return "", domain.Identity{}, errMissingFields
	}

	acc, err := s.store.accountByEmail(email)
	if errors.Is(err, domain.ErrNotFound) {
		return "", domain.Identity{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.Identity{}, err
	}

	if bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return "", domain.Identity{}, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(acc.identity)
	if err != nil {
		return "", domain.Identity{}, err
	}
	return token, acc.identity, nil
}

func (s *AuthService) generateToken(identity domain.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":  identity.ID.String(),
		"role": string(identity.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
