package domain

import (
	"errors"
	"testing"
)

func TestNights(t *testing.T) {
	cases := []struct {
		in, out string
		want    int
		err     error
	}{
		{"2026-01-10", "2026-01-13", 3, nil},
		{"2026-02-28", "2026-03-01", 1, nil},
		{"2026-01-10", "2026-01-10", 0, ErrInvalidStay},
		{"2026-01-10", "2026-01-09", 0, ErrInvalidStay},
		{"garbage", "2026-01-09", 0, ErrInvalidStay},
	}
	for _, tc := range cases {
		got, err := Nights(tc.in, tc.out)
		if !errors.Is(err, tc.err) {
			t.Fatalf("Nights(%s, %s) err = %v, want %v", tc.in, tc.out, err, tc.err)
		}
		if got != tc.want {
			t.Fatalf("Nights(%s, %s) = %d, want %d", tc.in, tc.out, got, tc.want)
		}
	}
}

func TestNewQuote(t *testing.T) {
	room := Room{PriceNoBreakfast: 1000000, PriceWithBreakfast: 1200000}

	q, err := NewQuote(room, "2026-01-10", "2026-01-12", BreakfastWith)
	if err != nil {
		t.Fatalf("NewQuote: %v", err)
	}
	if q.Nights != 2 || q.PricePerNight != 1200000 {
		t.Fatalf("unexpected nights/price: %+v", q)
	}
	if q.Subtotal != 2400000 || q.Tax != 240000 || q.Total != 2400000+240000+ServiceFee {
		t.Fatalf("unexpected totals: %+v", q)
	}

	q, _ = NewQuote(room, "2026-01-10", "2026-01-11", BreakfastWithout)
	if q.PricePerNight != 1000000 {
		t.Fatalf("expected no-breakfast rate, got %v", q.PricePerNight)
	}
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	if !BookingPending.CanTransitionTo(BookingConfirmed) {
		t.Fatalf("pending -> confirmed should be allowed")
	}
	if BookingCheckedOut.CanTransitionTo(BookingPending) {
		t.Fatalf("checked_out is terminal")
	}
	if BookingCheckedIn.CanTransitionTo(BookingCancelled) {
		t.Fatalf("checked_in cannot be cancelled")
	}
}
