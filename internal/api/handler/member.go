package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/service"
)

const (
	msgBookingFailed = "Booking failed"
	msgRatingFailed  = "Could not submit your rating"

	actionQuote = "quote"
	actionPay   = "pay"
)

// MemberHandler serves the guest-only pages: checkout, booking history and
// ratings.
type MemberHandler struct {
	paymentDelay time.Duration
	log          zerolog.Logger
}

// NewMemberHandler returns a MemberHandler. paymentDelay simulates the
// payment step of the checkout.
func NewMemberHandler(paymentDelay time.Duration, log zerolog.Logger) *MemberHandler {
	return &MemberHandler{paymentDelay: paymentDelay, log: log}
}

// CheckoutForm is the checkout form as posted by the browser.
type CheckoutForm struct {
	RoomID        string `form:"room_id" query:"room_id" validate:"required"`
	GuestName     string `form:"guest_name" validate:"required"`
	NIK           string `form:"nik" validate:"omitempty,numeric,len=16"`
	Phone         string `form:"phone"`
	CheckIn       string `form:"check_in" query:"check_in" validate:"required"`
	CheckOut      string `form:"check_out" query:"check_out" validate:"required"`
	TotalGuests   int    `form:"total_guests" validate:"min=1"`
	Breakfast     string `form:"breakfast" validate:"oneof=with without"`
	PaymentMethod string `form:"payment_method" validate:"oneof=transfer card ewallet"`
	Action        string `form:"action"`
}

// CheckoutData feeds the "checkout" template.
type CheckoutData struct {
	Room  *domain.Room
	Form  CheckoutForm
	Quote *domain.Quote
}

// CheckoutPage shows the booking form for the room given in the query,
// prefilled from the signed-in identity.
func (h *MemberHandler) CheckoutPage(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	form := CheckoutForm{TotalGuests: 1, Breakfast: string(domain.BreakfastWithout), PaymentMethod: "transfer"}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &form); err != nil || form.RoomID == "" {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	if id := b.Session.Snapshot().Identity; id != nil {
		form.GuestName, form.Phone = id.Name, id.Phone
	}

	room, err := h.room(c, b, form.RoomID)
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "checkout", newPage(c, "Checkout", CheckoutData{Room: room, Form: form}))
}

// Checkout prices the stay and, when the guest confirms, pays and books it.
func (h *MemberHandler) Checkout(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var form CheckoutForm
	if err := c.Bind(&form); err != nil || form.RoomID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checkout form")
	}
	room, err := h.room(c, b, form.RoomID)
	if err != nil {
		return err
	}

	data := CheckoutData{Room: room, Form: form}
	if err := c.Validate(&form); err != nil {
		return h.checkoutFailed(c, data, err.Error())
	}
	if room.Capacity > 0 && form.TotalGuests > room.Capacity {
		return h.checkoutFailed(c, data, fmt.Sprintf("This room fits at most %d guests", room.Capacity))
	}
	quote, err := domain.NewQuote(*room, form.CheckIn, form.CheckOut, domain.BreakfastOption(form.Breakfast))
	if err != nil {
		return h.checkoutFailed(c, data, err.Error())
	}
	data.Quote = &quote

	if form.Action != actionPay {
		return render(c, http.StatusOK, "checkout", newPage(c, "Checkout", data))
	}

	if err := h.pay(c); err != nil {
		return err
	}

	booking, err := b.Bookings.Create(c.Request().Context(), domain.BookingInput{
		GuestName:     form.GuestName,
		NIK:           form.NIK,
		Phone:         form.Phone,
		CheckIn:       form.CheckIn,
		CheckOut:      form.CheckOut,
		TotalGuests:   form.TotalGuests,
		PaymentMethod: form.PaymentMethod,
		TotalPrice:    quote.Total,
		Rooms: []domain.BookingRoom{{
			RoomID:          room.ID,
			Quantity:        1,
			BreakfastOption: domain.BreakfastOption(form.Breakfast),
		}},
	})
	if err != nil {
		msg, err := inlineError(err, msgBookingFailed)
		if err != nil {
			return err
		}
		return h.checkoutFailed(c, data, msg)
	}

	h.log.Info().Str("browser_id", b.ID).Str("booking_id", booking.ID.String()).Msg("booking created")
	return c.Redirect(http.StatusSeeOther, "/my-bookings?booked="+booking.ID.String())
}

// pay waits for the simulated payment provider. The wait ends early when the
// request is cancelled.
func (h *MemberHandler) pay(c echo.Context) error {
	if h.paymentDelay <= 0 {
		return nil
	}
	t := time.NewTimer(h.paymentDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-c.Request().Context().Done():
		return c.Request().Context().Err()
	}
}

func (h *MemberHandler) room(c echo.Context, b *service.Browser, id string) (*domain.Room, error) {
	room, err := b.Rooms.Get(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "room not found")
	}
	return room, err
}

func (h *MemberHandler) checkoutFailed(c echo.Context, data CheckoutData, msg string) error {
	p := newPage(c, "Checkout", data)
	p.Error = msg
	return render(c, http.StatusUnprocessableEntity, "checkout", p)
}

// BookingsData feeds the "my_bookings" template.
type BookingsData struct {
	Bookings []domain.Booking
}

// MyBookings lists the reservations of the signed-in guest.
func (h *MemberHandler) MyBookings(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	bookings, err := b.Bookings.Mine(c.Request().Context())
	if err != nil {
		return err
	}

	p := newPage(c, "My bookings", BookingsData{Bookings: bookings})
	switch {
	case c.QueryParam("booked") != "":
		p.Notice = "Booking #" + c.QueryParam("booked") + " created. Thank you!"
	case c.QueryParam("rated") != "":
		p.Notice = "Thanks for rating your stay."
	}
	return render(c, http.StatusOK, "my_bookings", p)
}

// RateData feeds the "rate" template.
type RateData struct {
	BookingID string
	Form      domain.ReviewInput
}

func (h *MemberHandler) RatePage(c echo.Context) error {
	data := RateData{BookingID: c.Param("bookingId"), Form: domain.ReviewInput{Star: 5}}
	return render(c, http.StatusOK, "rate", newPage(c, "Rate your stay", data))
}

// Rate submits a rating for a completed stay.
func (h *MemberHandler) Rate(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	data := RateData{BookingID: c.Param("bookingId")}
	if err := c.Bind(&data.Form); err != nil {
		return h.rateFailed(c, data, msgInvalidForm)
	}
	data.Form.BookingID = data.BookingID
	if err := c.Validate(&data.Form); err != nil {
		return h.rateFailed(c, data, err.Error())
	}

	if _, err := b.Bookings.Rate(c.Request().Context(), data.Form); err != nil {
		msg, err := inlineError(err, msgRatingFailed)
		if err != nil {
			return err
		}
		return h.rateFailed(c, data, msg)
	}
	return c.Redirect(http.StatusSeeOther, "/my-bookings?rated=1")
}

func (h *MemberHandler) rateFailed(c echo.Context, data RateData, msg string) error {
	p := newPage(c, "Rate your stay", data)
	p.Error = msg
	return render(c, http.StatusUnprocessableEntity, "rate", p)
}
