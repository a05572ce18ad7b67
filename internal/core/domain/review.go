package domain

import "time"

// Review is a guest rating of a completed stay.
type Review struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id,omitempty"`
	BookingID ID        `json:"booking_id"`
	GuestName string    `json:"guest_name,omitempty"`
	Star      int       `json:"star"`
	Comment   string    `json:"comment,omitempty"`
	Room      *Room     `json:"room,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// ReviewInput is the member rating payload.
type ReviewInput struct {
	BookingID string `json:"booking_id"`
	Star      int    `json:"star" form:"star" validate:"min=1,max=5"`
	Comment   string `json:"comment" form:"comment"`
}
