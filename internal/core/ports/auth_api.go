package ports

import (
	"context"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// AuthResponse is the body returned by the login and register endpoints.
// Register may omit the token.
type AuthResponse struct {
	Token   string           `json:"access_token"`
	User    *domain.Identity `json:"user"`
	Message string           `json:"message,omitempty"`
}

// RegisterPayload is exactly what is transmitted to the registration
// endpoint. It deliberately has no password confirmation field.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

// AuthAPI is the identity part of the hotel REST API.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Register(ctx context.Context, payload RegisterPayload) (*AuthResponse, error)
	Me(ctx context.Context) (*domain.Identity, error)
}
