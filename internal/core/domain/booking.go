package domain

import "time"

// BookingStatus represents the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// validBookingTransitions defines the allowed admin status changes.
var validBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn: {BookingCheckedOut},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validBookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	}
	return false
}

// NextStatuses lists the statuses reachable from s, in display order.
func (s BookingStatus) NextStatuses() []BookingStatus {
	return validBookingTransitions[s]
}

// BreakfastOption selects the nightly rate.
type BreakfastOption string

const (
	BreakfastWith    BreakfastOption = "with"
	BreakfastWithout BreakfastOption = "without"
)

// BookingRoom is one room line of a reservation.
type BookingRoom struct {
	RoomID          ID              `json:"room_id"`
	Quantity        int             `json:"quantity"`
	BreakfastOption BreakfastOption `json:"breakfast_option"`
	PricePerNight   float64         `json:"price_per_night,omitempty"`
	Subtotal        float64         `json:"subtotal,omitempty"`
	Room            *Room           `json:"room,omitempty"`
}

// Booking is a reservation as returned by the API.
type Booking struct {
	ID            ID            `json:"id"`
	UserID        ID            `json:"user_id,omitempty"`
	GuestName     string        `json:"guest_name"`
	NIK           string        `json:"nik,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	CheckIn       string        `json:"check_in"`
	CheckOut      string        `json:"check_out"`
	TotalGuests   int           `json:"total_guests"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	TotalPrice    float64       `json:"total_price"`
	Status        BookingStatus `json:"status"`
	Rooms         []BookingRoom `json:"booking_rooms,omitempty"`
	CreatedAt     time.Time     `json:"created_at,omitempty"`
}

// BookingInput is the checkout payload sent to the API.
type BookingInput struct {
	GuestName     string        `json:"guest_name"`
	NIK           string        `json:"nik"`
	Phone         string        `json:"phone"`
	CheckIn       string        `json:"check_in"`
	CheckOut      string        `json:"check_out"`
	TotalGuests   int           `json:"total_guests"`
	PaymentMethod string        `json:"payment_method"`
	TotalPrice    float64       `json:"total_price"`
	Rooms         []BookingRoom `json:"booking_rooms"`
}
