package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const photoField = "photos"

type adminAPI struct{ b *binding }

func (a *adminAPI) Rooms(ctx context.Context) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := a.b.getJSON(ctx, "/admin/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (a *adminAPI) CreateRoom(ctx context.Context, in domain.RoomInput) (*domain.Room, error) {
	var room domain.Room
	if err := a.b.sendJSON(ctx, http.MethodPost, "/admin/rooms", in, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *adminAPI) UpdateRoom(ctx context.Context, id string, in domain.RoomInput) (*domain.Room, error) {
	var room domain.Room
	if err := a.b.sendJSON(ctx, http.MethodPut, "/admin/rooms/"+escape(id), in, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *adminAPI) DeleteRoom(ctx context.Context, id string) error {
	return a.b.sendJSON(ctx, http.MethodDelete, "/admin/rooms/"+escape(id), nil, nil)
}

// UploadRoomPhoto forwards the file as multipart/form-data; the JSON content
// type is not applied.
func (a *adminAPI) UploadRoomPhoto(ctx context.Context, id string, up ports.Upload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	field := up.FieldName
	if field == "" {
		field = photoField
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, up.FileName))
	if up.ContentType != "" {
		h.Set("Content-Type", up.ContentType)
	} else {
		h.Set("Content-Type", "application/octet-stream")
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}

	return a.b.do(ctx, request{
		method:      http.MethodPost,
		path:        "/admin/rooms/" + escape(id) + "/photos",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, nil)
}

func (a *adminAPI) Bookings(ctx context.Context) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := a.b.getJSON(ctx, "/admin/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

type statusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

func (a *adminAPI) UpdateBookingStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	var booking domain.Booking
	if err := a.b.sendJSON(ctx, http.MethodPatch, "/admin/bookings/"+escape(id)+"/status", statusRequest{Status: status}, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (a *adminAPI) Promotions(ctx context.Context) ([]domain.Promotion, error) {
	var promos []domain.Promotion
	if err := a.b.getJSON(ctx, "/admin/promotions", nil, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

func (a *adminAPI) CreatePromotion(ctx context.Context, in domain.PromotionInput) (*domain.Promotion, error) {
	var promo domain.Promotion
	if err := a.b.sendJSON(ctx, http.MethodPost, "/admin/promotions", in, &promo); err != nil {
		return nil, err
	}
	return &promo, nil
}

func (a *adminAPI) UpdatePromotion(ctx context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error) {
	var promo domain.Promotion
	if err := a.b.sendJSON(ctx, http.MethodPut, "/admin/promotions/"+escape(id), in, &promo); err != nil {
		return nil, err
	}
	return &promo, nil
}

func (a *adminAPI) DeletePromotion(ctx context.Context, id string) error {
	return a.b.sendJSON(ctx, http.MethodDelete, "/admin/promotions/"+escape(id), nil, nil)
}

func (a *adminAPI) Reviews(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := a.b.getJSON(ctx, "/admin/reviews", nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (a *adminAPI) DeleteReview(ctx context.Context, id string) error {
	return a.b.sendJSON(ctx, http.MethodDelete, "/admin/reviews/"+escape(id), nil, nil)
}
