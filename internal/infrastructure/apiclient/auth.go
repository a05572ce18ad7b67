package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

type authAPI struct{ b *binding }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *authAPI) Login(ctx context.Context, email, password string) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := a.b.sendJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *authAPI) Register(ctx context.Context, payload ports.RegisterPayload) (*ports.AuthResponse, error) {
	var resp ports.AuthResponse
	if err := a.b.sendJSON(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *authAPI) Me(ctx context.Context) (*domain.Identity, error) {
	var identity domain.Identity
	if err := a.b.getJSON(ctx, "/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("get /auth/me: %w", err)
	}
	return &identity, nil
}
