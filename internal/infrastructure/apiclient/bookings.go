package apiclient

import (
	"context"
	"net/http"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

type bookingsAPI struct{ b *binding }

func (a *bookingsAPI) Create(ctx context.Context, in domain.BookingInput) (*domain.Booking, error) {
	var booking domain.Booking
	if err := a.b.sendJSON(ctx, http.MethodPost, "/bookings", in, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (a *bookingsAPI) Mine(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := a.b.getJSON(ctx, "/bookings/me", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (a *bookingsAPI) Rate(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	var review domain.Review
	if err := a.b.sendJSON(ctx, http.MethodPost, "/ratings", in, &review); err != nil {
		return nil, err
	}
	return &review, nil
}
