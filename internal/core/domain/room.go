package domain

// RoomType groups rooms sharing a description and price tier.
type RoomType struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// RoomPhoto is an uploaded picture of a room. Only its URL is handled here.
type RoomPhoto struct {
	ID  ID     `json:"id"`
	URL string `json:"photo_path"`
}

// Room is a bookable hotel room as returned by the API.
type Room struct {
	ID                 ID          `json:"id"`
	RoomTypeID         ID          `json:"room_type_id,omitempty"`
	RoomNumber         string      `json:"room_number"`
	Name               string      `json:"name,omitempty"`
	Capacity           int         `json:"capacity"`
	PriceNoBreakfast   float64     `json:"price_no_breakfast"`
	PriceWithBreakfast float64     `json:"price_with_breakfast"`
	Status             string      `json:"status"`
	Description        string      `json:"description,omitempty"`
	Facilities         []string    `json:"facilities,omitempty"`
	ImageURL           string      `json:"image_url,omitempty"`
	RoomType           *RoomType   `json:"room_type,omitempty"`
	Photos             []RoomPhoto `json:"photos,omitempty"`
}

// PricePerNight returns the nightly rate for the chosen breakfast option.
func (r Room) PricePerNight(breakfast BreakfastOption) float64 {
	if breakfast == BreakfastWith {
		return r.PriceWithBreakfast
	}
	return r.PriceNoBreakfast
}

// RoomFilter narrows the public room listing. Zero values are not sent.
type RoomFilter struct {
	RoomType string  `query:"room_type"`
	MinPrice float64 `query:"min_price"`
	MaxPrice float64 `query:"max_price"`
	Capacity int     `query:"capacity"`
}

// RoomInput is the admin create/update payload.
type RoomInput struct {
	RoomTypeID         string   `json:"room_type_id" form:"room_type_id" validate:"required"`
	RoomNumber         string   `json:"room_number" form:"room_number" validate:"required"`
	Capacity           int      `json:"capacity" form:"capacity" validate:"gt=0"`
	PriceNoBreakfast   float64  `json:"price_no_breakfast" form:"price_no_breakfast" validate:"gt=0"`
	PriceWithBreakfast float64  `json:"price_with_breakfast" form:"price_with_breakfast" validate:"gt=0"`
	Status             string   `json:"status" form:"status" validate:"omitempty,oneof=available unavailable"`
	Description        string   `json:"description" form:"description"`
	Facilities         []string `json:"facilities,omitempty" form:"facilities"`
}

// AvailabilityQuery is a date-range availability request.
type AvailabilityQuery struct {
	CheckIn    string `query:"check_in"`
	CheckOut   string `query:"check_out"`
	RoomTypeID string `query:"room_type_id"`
}

// RoomAvailability is one entry of an availability answer.
type RoomAvailability struct {
	RoomID     ID     `json:"room_id"`
	RoomNumber string `json:"room_number"`
	Available  bool   `json:"available"`
}
