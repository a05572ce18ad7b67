package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
	"github.com/grandstay/hotel-web/internal/core/service"
)

const (
	recentBookings   = 5
	photoField       = "photos"
	msgSaveFailed    = "Could not save changes"
	msgDeleteFailed  = "Could not delete"
	msgUploadFailed  = "Could not upload photo"
	msgStatusFailed  = "Could not update booking status"
	msgMissingUpload = "Choose a photo to upload"
)

// AdminHandler serves the back-office pages. Every mutation redirects back
// to its list page on success and re-renders it with an inline error
// otherwise.
type AdminHandler struct {
	log zerolog.Logger
}

func NewAdminHandler(log zerolog.Logger) *AdminHandler {
	return &AdminHandler{log: log}
}

// DashboardData feeds the "admin_dashboard" template.
type DashboardData struct {
	Rooms         int
	Bookings      int
	Pending       int
	Revenue       float64
	Reviews       int
	AverageRating float64
	Recent        []domain.Booking
}

// Dashboard summarises rooms, bookings and reviews.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var (
		rooms    []domain.Room
		bookings []domain.Booking
		reviews  []domain.Review
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() (err error) {
		rooms, err = b.Admin.Rooms(ctx)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = b.Admin.Bookings(ctx)
		return err
	})
	g.Go(func() (err error) {
		reviews, err = b.Admin.Reviews(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return render(c, http.StatusOK, "admin_dashboard", newPage(c, "Dashboard", summarize(rooms, bookings, reviews)))
}

func summarize(rooms []domain.Room, bookings []domain.Booking, reviews []domain.Review) DashboardData {
	d := DashboardData{Rooms: len(rooms), Bookings: len(bookings), Reviews: len(reviews)}
	for _, bk := range bookings {
		switch bk.Status {
		case domain.BookingPending:
			d.Pending++
		case domain.BookingCancelled:
			continue
		}
		d.Revenue += bk.TotalPrice
	}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Star
		}
		d.AverageRating = float64(total) / float64(len(reviews))
	}

	d.Recent = slices.Clone(bookings)
	slices.SortStableFunc(d.Recent, func(a, b domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(d.Recent) > recentBookings {
		d.Recent = d.Recent[:recentBookings]
	}
	return d
}

// ── Rooms ────────────────────────────────────────────────────────────────────

// AdminRoomsData feeds the "admin_rooms" template.
type AdminRoomsData struct {
	Rooms []domain.Room
	New   domain.RoomInput
}

func (h *AdminHandler) Rooms(c echo.Context) error {
	return h.roomsPage(c, http.StatusOK, domain.RoomInput{Status: "available"}, "")
}

func (h *AdminHandler) roomsPage(c echo.Context, code int, draft domain.RoomInput, msg string) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	rooms, err := b.Admin.Rooms(c.Request().Context())
	if err != nil {
		return err
	}
	p := newPage(c, "Rooms", AdminRoomsData{Rooms: rooms, New: draft})
	p.Error = msg
	return render(c, code, "admin_rooms", p)
}

func (h *AdminHandler) CreateRoom(c echo.Context) error {
	return h.saveRoom(c, func(ctx context.Context, b *service.Browser, in domain.RoomInput) error {
		_, err := b.Admin.CreateRoom(ctx, in)
		return err
	})
}

func (h *AdminHandler) UpdateRoom(c echo.Context) error {
	id := c.Param("id")
	return h.saveRoom(c, func(ctx context.Context, b *service.Browser, in domain.RoomInput) error {
		_, err := b.Admin.UpdateRoom(ctx, id, in)
		return err
	})
}

func (h *AdminHandler) saveRoom(c echo.Context, save func(context.Context, *service.Browser, domain.RoomInput) error) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	var in domain.RoomInput
	if err := c.Bind(&in); err != nil {
		return h.roomsPage(c, http.StatusUnprocessableEntity, in, msgInvalidForm)
	}
	if err := c.Validate(&in); err != nil {
		return h.roomsPage(c, http.StatusUnprocessableEntity, in, err.Error())
	}
	if err := save(c.Request().Context(), b, in); err != nil {
		return h.mutationFailed(c, err, msgSaveFailed, func(msg string) error {
			return h.roomsPage(c, http.StatusUnprocessableEntity, in, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/rooms")
}

func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	if err := b.Admin.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return h.mutationFailed(c, err, msgDeleteFailed, func(msg string) error {
			return h.roomsPage(c, http.StatusUnprocessableEntity, domain.RoomInput{}, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/rooms")
}

// UploadRoomPhoto passes the uploaded file through to the API unchanged.
func (h *AdminHandler) UploadRoomPhoto(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	failed := func(msg string) error {
		return h.roomsPage(c, http.StatusUnprocessableEntity, domain.RoomInput{}, msg)
	}

	fh, err := c.FormFile(photoField)
	if err != nil {
		return failed(msgMissingUpload)
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	err = b.Admin.UploadRoomPhoto(c.Request().Context(), c.Param("id"), ports.Upload{
		FieldName:   photoField,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Body:        f,
	})
	if err != nil {
		return h.mutationFailed(c, err, msgUploadFailed, failed)
	}
	h.log.Info().Str("room_id", c.Param("id")).Int64("bytes", fh.Size).Msg("room photo uploaded")
	return c.Redirect(http.StatusSeeOther, "/admin/rooms")
}

// ── Bookings ─────────────────────────────────────────────────────────────────

// AdminBookingsData feeds the "admin_bookings" template.
type AdminBookingsData struct {
	Bookings []domain.Booking
}

func (h *AdminHandler) Bookings(c echo.Context) error {
	return h.bookingsPage(c, http.StatusOK, "")
}

func (h *AdminHandler) bookingsPage(c echo.Context, code int, msg string) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	bookings, err := b.Admin.Bookings(c.Request().Context())
	if err != nil {
		return err
	}
	p := newPage(c, "Bookings", AdminBookingsData{Bookings: bookings})
	p.Error = msg
	return render(c, code, "admin_bookings", p)
}

// UpdateBookingStatus moves a booking along its lifecycle. The API has the
// final word on whether the transition is allowed.
func (h *AdminHandler) UpdateBookingStatus(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	status := domain.BookingStatus(c.FormValue("status"))
	if !status.Valid() {
		return h.bookingsPage(c, http.StatusUnprocessableEntity, "unknown booking status")
	}
	if _, err := b.Admin.UpdateBookingStatus(c.Request().Context(), c.Param("id"), status); err != nil {
		return h.mutationFailed(c, err, msgStatusFailed, func(msg string) error {
			return h.bookingsPage(c, http.StatusUnprocessableEntity, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/bookings")
}

// ── Promotions ───────────────────────────────────────────────────────────────

// AdminPromotionsData feeds the "admin_promotions" template.
type AdminPromotionsData struct {
	Promotions []domain.Promotion
	New        domain.PromotionInput
}

func (h *AdminHandler) Promotions(c echo.Context) error {
	return h.promotionsPage(c, http.StatusOK, domain.PromotionInput{Active: true}, "")
}

func (h *AdminHandler) promotionsPage(c echo.Context, code int, draft domain.PromotionInput, msg string) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	promos, err := b.Admin.Promotions(c.Request().Context())
	if err != nil {
		return err
	}
	p := newPage(c, "Promotions", AdminPromotionsData{Promotions: promos, New: draft})
	p.Error = msg
	return render(c, code, "admin_promotions", p)
}

func (h *AdminHandler) CreatePromotion(c echo.Context) error {
	return h.savePromotion(c, func(ctx context.Context, b *service.Browser, in domain.PromotionInput) error {
		_, err := b.Admin.CreatePromotion(ctx, in)
		return err
	})
}

func (h *AdminHandler) UpdatePromotion(c echo.Context) error {
	id := c.Param("id")
	return h.savePromotion(c, func(ctx context.Context, b *service.Browser, in domain.PromotionInput) error {
		_, err := b.Admin.UpdatePromotion(ctx, id, in)
		return err
	})
}

func (h *AdminHandler) savePromotion(c echo.Context, save func(context.Context, *service.Browser, domain.PromotionInput) error) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	var in domain.PromotionInput
	if err := c.Bind(&in); err != nil {
		return h.promotionsPage(c, http.StatusUnprocessableEntity, in, msgInvalidForm)
	}
	if err := c.Validate(&in); err != nil {
		return h.promotionsPage(c, http.StatusUnprocessableEntity, in, err.Error())
	}
	if err := save(c.Request().Context(), b, in); err != nil {
		return h.mutationFailed(c, err, msgSaveFailed, func(msg string) error {
			return h.promotionsPage(c, http.StatusUnprocessableEntity, in, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/promotions")
}

func (h *AdminHandler) DeletePromotion(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	if err := b.Admin.DeletePromotion(c.Request().Context(), c.Param("id")); err != nil {
		return h.mutationFailed(c, err, msgDeleteFailed, func(msg string) error {
			return h.promotionsPage(c, http.StatusUnprocessableEntity, domain.PromotionInput{Active: true}, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/promotions")
}

// ── Reviews ──────────────────────────────────────────────────────────────────

// AdminReviewsData feeds the "admin_reviews" template.
type AdminReviewsData struct {
	Reviews []domain.Review
}

func (h *AdminHandler) Reviews(c echo.Context) error {
	return h.reviewsPage(c, http.StatusOK, "")
}

func (h *AdminHandler) reviewsPage(c echo.Context, code int, msg string) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	reviews, err := b.Admin.Reviews(c.Request().Context())
	if err != nil {
		return err
	}
	p := newPage(c, "Reviews", AdminReviewsData{Reviews: reviews})
	p.Error = msg
	return render(c, code, "admin_reviews", p)
}

func (h *AdminHandler) DeleteReview(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	if err := b.Admin.DeleteReview(c.Request().Context(), c.Param("id")); err != nil {
		return h.mutationFailed(c, err, msgDeleteFailed, func(msg string) error {
			return h.reviewsPage(c, http.StatusUnprocessableEntity, msg)
		})
	}
	return c.Redirect(http.StatusSeeOther, "/admin/reviews")
}

// mutationFailed re-renders the list page with the failure message, unless
// the failure must be handled globally.
func (h *AdminHandler) mutationFailed(c echo.Context, err error, fallback string, rerender func(string) error) error {
	msg, err2 := inlineError(err, fallback)
	if err2 != nil {
		return err2
	}
	if errors.Is(err, domain.ErrForbidden) {
		return err
	}
	h.log.Warn().Err(err).Str("path", c.Path()).Msg("admin change rejected")
	return rerender(msg)
}
