package domain

import (
	"math"
	"time"
)

const (
	// TaxRate is applied to the room subtotal.
	TaxRate = 0.10
	// ServiceFee is a flat per-booking charge.
	ServiceFee = 50000.0

	dateLayout = "2006-01-02"
)

// Quote is the price breakdown shown on the checkout review step.
type Quote struct {
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"price_per_night"`
	Subtotal      float64 `json:"subtotal"`
	Tax           float64 `json:"tax"`
	ServiceFee    float64 `json:"service_fee"`
	Total         float64 `json:"total"`
}

// Nights returns the number of nights between two YYYY-MM-DD dates, rounding
// partial days up.
func Nights(checkIn, checkOut string) (int, error) {
	in, err := time.Parse(dateLayout, checkIn)
	if err != nil {
		return 0, ErrInvalidStay
	}
	out, err := time.Parse(dateLayout, checkOut)
	if err != nil {
		return 0, ErrInvalidStay
	}
	n := int(math.Ceil(out.Sub(in).Hours() / 24))
	if n < 1 {
		return 0, ErrInvalidStay
	}
	return n, nil
}

// NewQuote prices a stay in room for the given dates and breakfast option.
func NewQuote(room Room, checkIn, checkOut string, breakfast BreakfastOption) (Quote, error) {
	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return Quote{}, err
	}
	price := room.PricePerNight(breakfast)
	subtotal := float64(nights) * price
	tax := subtotal * TaxRate
	return Quote{
		Nights:        nights,
		PricePerNight: price,
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceFee:    ServiceFee,
		Total:         subtotal + tax + ServiceFee,
	}, nil
}
