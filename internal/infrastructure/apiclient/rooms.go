package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

type roomsAPI struct{ b *binding }

func (a *roomsAPI) List(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	var rooms []domain.Room
	if err := a.b.getJSON(ctx, "/rooms", filterQuery(f), &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

func (a *roomsAPI) Get(ctx context.Context, id string) (*domain.Room, error) {
	var room domain.Room
	if err := a.b.getJSON(ctx, "/rooms/"+escape(id), nil, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (a *roomsAPI) Availability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.RoomAvailability, error) {
	v := url.Values{}
	v.Set("check_in", q.CheckIn)
	v.Set("check_out", q.CheckOut)
	if q.RoomTypeID != "" {
		v.Set("room_type_id", q.RoomTypeID)
	}
	var out []domain.RoomAvailability
	if err := a.b.getJSON(ctx, "/rooms/availability", v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *roomsAPI) Promotions(ctx context.Context) ([]domain.Promotion, error) {
	var promos []domain.Promotion
	if err := a.b.getJSON(ctx, "/promotions", nil, &promos); err != nil {
		return nil, err
	}
	return promos, nil
}

// filterQuery keeps only the filters that were set.
func filterQuery(f domain.RoomFilter) url.Values {
	v := url.Values{}
	if f.RoomType != "" {
		v.Set("room_type", f.RoomType)
	}
	if f.MinPrice > 0 {
		v.Set("min_price", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.Capacity > 0 {
		v.Set("capacity", strconv.Itoa(f.Capacity))
	}
	return v
}
