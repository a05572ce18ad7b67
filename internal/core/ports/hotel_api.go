package ports

import (
	"context"
	"io"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// RoomsAPI covers the public room endpoints.
type RoomsAPI interface {
	List(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error)
	Get(ctx context.Context, id string) (*domain.Room, error)
	Availability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.RoomAvailability, error)
	Promotions(ctx context.Context) ([]domain.Promotion, error)
}

// BookingsAPI covers the member booking and rating endpoints.
type BookingsAPI interface {
	Create(ctx context.Context, in domain.BookingInput) (*domain.Booking, error)
	Mine(ctx context.Context) ([]domain.Booking, error)
	Rate(ctx context.Context, in domain.ReviewInput) (*domain.Review, error)
}

// Upload is a file passed through to the API unchanged.
type Upload struct {
	FieldName   string
	FileName    string
	ContentType string
	Body        io.Reader
}

// AdminAPI covers the back-office endpoints.
type AdminAPI interface {
	Rooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, in domain.RoomInput) (*domain.Room, error)
	UpdateRoom(ctx context.Context, id string, in domain.RoomInput) (*domain.Room, error)
	DeleteRoom(ctx context.Context, id string) error
	UploadRoomPhoto(ctx context.Context, id string, up Upload) error

	Bookings(ctx context.Context) ([]domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)

	Promotions(ctx context.Context) ([]domain.Promotion, error)
	CreatePromotion(ctx context.Context, in domain.PromotionInput) (*domain.Promotion, error)
	UpdatePromotion(ctx context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error)
	DeletePromotion(ctx context.Context, id string) error

	Reviews(ctx context.Context) ([]domain.Review, error)
	DeleteReview(ctx context.Context, id string) error
}

// UnauthorizedHandler is notified whenever the API rejects a credential.
type UnauthorizedHandler interface {
	HandleUnauthorized(ctx context.Context)
}

// APIs is the set of API facades bound to one browser's credential.
type APIs struct {
	Auth     AuthAPI
	Rooms    RoomsAPI
	Bookings BookingsAPI
	Admin    AdminAPI
}

// APIBinder produces API facades that read the bearer credential from creds
// before every request and report 401 responses to onUnauthorized.
type APIBinder interface {
	Bind(creds CredentialStore, onUnauthorized UnauthorizedHandler) APIs
}
