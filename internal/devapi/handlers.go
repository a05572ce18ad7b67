package devapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const photoField = "photos"

type handlers struct {
	store *Store
	auth  *AuthService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string          `json:"message"`
	User    domain.Identity `json:"user"`
}

type statusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

func bindJSON(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid payload")
	}
	return nil
}

func bindValid(c echo.Context, v any) error {
	if err := bindJSON(c, v); err != nil {
		return err
	}
	return c.Validate(v)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func (h *handlers) register(c echo.Context) error {
	var req ports.RegisterPayload
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, registerResponse{Message: "User registered successfully", User: user})
}

func (h *handlers) login(c echo.Context) error {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	token, user, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.AuthResponse{Token: token, User: &user})
}

func (h *handlers) me(c echo.Context) error {
	user, err := h.store.Account(userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ── Rooms ────────────────────────────────────────────────────────────────────

func (h *handlers) listRooms(c echo.Context) error {
	var f domain.RoomFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid filter")
	}
	return c.JSON(http.StatusOK, orEmpty(h.store.Rooms(f, false)))
}

func (h *handlers) getRoom(c echo.Context) error {
	room, err := h.store.Room(domain.ID(c.Param("id")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

func (h *handlers) availability(c echo.Context) error {
	var q domain.AvailabilityQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query")
	}
	out, err := h.store.Availability(q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orEmpty(out))
}

func (h *handlers) activePromotions(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Promotions(true)))
}

// ── Member ───────────────────────────────────────────────────────────────────

func (h *handlers) createBooking(c echo.Context) error {
	var in domain.BookingInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	booking, err := h.store.CreateBooking(userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *handlers) myBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Bookings(userID(c))))
}

func (h *handlers) createRating(c echo.Context) error {
	var in domain.ReviewInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	review, err := h.store.CreateReview(userID(c), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, review)
}

// ── Admin ────────────────────────────────────────────────────────────────────

func (h *handlers) adminRooms(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Rooms(domain.RoomFilter{}, true)))
}

func (h *handlers) createRoom(c echo.Context) error {
	var in domain.RoomInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	room, err := h.store.CreateRoom(in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

func (h *handlers) updateRoom(c echo.Context) error {
	var in domain.RoomInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	room, err := h.store.UpdateRoom(domain.ID(c.Param("id")), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

func (h *handlers) deleteRoom(c echo.Context) error {
	if err := h.store.DeleteRoom(domain.ID(c.Param("id"))); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Room deleted successfully"})
}

func (h *handlers) uploadPhotos(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No photos provided")
	}
	files := form.File[photoField]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No photos provided")
	}
	names := make([]string, 0, len(files))
	for _, fh := range files {
		names = append(names, fh.Filename)
	}
	photos, err := h.store.AddPhotos(domain.ID(c.Param("id")), names)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, photos)
}

func (h *handlers) allBookings(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Bookings("")))
}

func (h *handlers) updateBookingStatus(c echo.Context) error {
	var req statusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if !req.Status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid status")
	}
	booking, err := h.store.SetBookingStatus(domain.ID(c.Param("id")), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *handlers) allPromotions(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Promotions(false)))
}

func (h *handlers) createPromotion(c echo.Context) error {
	var in domain.PromotionInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.store.CreatePromotion(in))
}

func (h *handlers) updatePromotion(c echo.Context) error {
	var in domain.PromotionInput
	if err := bindValid(c, &in); err != nil {
		return err
	}
	promo, err := h.store.UpdatePromotion(domain.ID(c.Param("id")), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, promo)
}

func (h *handlers) deletePromotion(c echo.Context) error {
	if err := h.store.DeletePromotion(domain.ID(c.Param("id"))); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Promotion deleted successfully"})
}

func (h *handlers) reviews(c echo.Context) error {
	return c.JSON(http.StatusOK, orEmpty(h.store.Reviews()))
}

func (h *handlers) deleteReview(c echo.Context) error {
	if err := h.store.DeleteReview(domain.ID(c.Param("id"))); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Rating deleted successfully"})
}

// orEmpty makes empty lists encode as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
