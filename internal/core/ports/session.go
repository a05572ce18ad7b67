package ports

import (
	"context"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// AuthResult reports the outcome of a login or registration. Session
// operations never return errors to their callers.
type AuthResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RegisterInput is what the registration form collects.
type RegisterInput struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	Phone           string `json:"phone" form:"phone"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required,eqfield=Password"`
}

// Payload strips the fields that must never leave the browser.
func (in RegisterInput) Payload() RegisterPayload {
	return RegisterPayload{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: in.Password,
	}
}

// SessionService is the per-browser session store as seen by page handlers.
type SessionService interface {
	Snapshot() domain.Session
	Login(ctx context.Context, email, password string) AuthResult
	Register(ctx context.Context, in RegisterInput) AuthResult
	Logout(ctx context.Context)
	Done() <-chan struct{}
}
