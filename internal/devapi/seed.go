package devapi

import (
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

// Demo accounts created by Seed.
const (
	SeedAdminEmail     = "admin@grandimperion.com"
	SeedAdminPassword  = "admin123"
	SeedMemberEmail    = "john.doe@email.com"
	SeedMemberPassword = "password123"
)

type seedRoom struct {
	number    string
	roomType  string
	capacity  int
	price     float64
	breakfast float64
	desc      string
}

var seedRoomTypes = []domain.RoomType{
	{Name: "Standard", Description: "Cozy rooms with garden view"},
	{Name: "Deluxe", Description: "Spacious rooms with city view"},
	{Name: "Suite", Description: "Separate living area and premium facilities"},
	{Name: "Presidential", Description: "The finest the hotel has to offer"},
}

var seedRooms = []seedRoom{
	{"101", "Standard", 2, 800000, 1000000, "Comfortable standard room with garden view"},
	{"102", "Standard", 2, 800000, 1000000, "Comfortable standard room with garden view"},
	{"103", "Standard", 3, 900000, 1100000, "Standard room with extra bed and garden view"},
	{"301", "Deluxe", 2, 1500000, 1800000, "Spacious deluxe room with city view and premium amenities"},
	{"402", "Deluxe", 4, 2000000, 2400000, "Large deluxe room perfect for families"},
	{"501", "Suite", 4, 3500000, 4000000, "Luxurious suite with separate living area and premium facilities"},
	{"701", "Presidential", 8, 8000000, 9500000, "Ultimate luxury presidential suite with exclusive amenities and panoramic views"},
}

// Seed loads the demo hotel: room types, rooms, a promotion, one admin and
// one member.
func Seed(store *Store, auth *AuthService) error {
	if _, err := auth.createAccount(ports.RegisterPayload{
		Name:     "Admin Hotel",
		Email:    SeedAdminEmail,
		Password: SeedAdminPassword,
	}, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := auth.createAccount(ports.RegisterPayload{
		Name:     "John Doe",
		Email:    SeedMemberEmail,
		Phone:    "081234567890",
		Password: SeedMemberPassword,
	}, domain.RoleMember); err != nil {
		return err
	}

	types := make(map[string]domain.ID, len(seedRoomTypes))
	for _, rt := range seedRoomTypes {
		types[rt.Name] = store.AddRoomType(rt).ID
	}
	for _, r := range seedRooms {
		if _, err := store.CreateRoom(domain.RoomInput{
			RoomTypeID:         types[r.roomType].String(),
			RoomNumber:         r.number,
			Capacity:           r.capacity,
			PriceNoBreakfast:   r.price,
			PriceWithBreakfast: r.breakfast,
			Status:             "available",
			Description:        r.desc,
		}); err != nil {
			return err
		}
	}

	store.CreatePromotion(domain.PromotionInput{
		Title:           "Early Bird",
		Description:     "Book 30 days ahead and save",
		DiscountPercent: 15,
		Code:            "EARLY15",
		Active:          true,
	})
	return nil
}
