// Package devapi is an in-memory hotel REST API for local development and
// integration tests. It answers the same routes and payloads as the real
// backend, including its {"message": ...} error envelope.
package devapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// Config configures a dev API server.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// Seed loads the demo hotel, its admin and a few members.
	Seed bool
}

type messageResponse struct {
	Message string `json:"message"`
}

type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// NewServer builds the dev API. All routes live under /api.
func NewServer(cfg Config, log zerolog.Logger) (*echo.Echo, *Store, error) {
	store := NewStore()
	auth := NewAuthService(store, cfg.JWTSecret, cfg.TokenTTL)
	if cfg.Seed {
		if err := Seed(store, auth); err != nil {
			return nil, nil, fmt.Errorf("devapi: seed: %w", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &requestValidator{v: validator.New()}
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-Requested-With"},
	}))

	h := &handlers{store: store, auth: auth}
	requireAuth := Auth(cfg.JWTSecret)

	api := e.Group("/api")
	api.POST("/auth/register", h.register)
	api.POST("/auth/login", h.login)
	api.GET("/auth/me", h.me, requireAuth)

	api.GET("/rooms", h.listRooms)
	api.GET("/rooms/availability", h.availability)
	api.GET("/rooms/:id", h.getRoom)
	api.GET("/promotions", h.activePromotions)

	api.POST("/bookings", h.createBooking, requireAuth)
	api.GET("/bookings/me", h.myBookings, requireAuth)
	api.POST("/ratings", h.createRating, requireAuth)

	admin := api.Group("/admin", requireAuth, RequireRole(domain.RoleAdmin))
	admin.GET("/rooms", h.adminRooms)
	admin.POST("/rooms", h.createRoom)
	admin.GET("/rooms/:id", h.getRoom)
	admin.PUT("/rooms/:id", h.updateRoom)
	admin.DELETE("/rooms/:id", h.deleteRoom)
	admin.POST("/rooms/:id/photos", h.uploadPhotos)
	admin.GET("/bookings", h.allBookings)
	admin.PATCH("/bookings/:id/status", h.updateBookingStatus)
	admin.PUT("/bookings/:id/status", h.updateBookingStatus)
	admin.GET("/promotions", h.allPromotions)
	admin.POST("/promotions", h.createPromotion)
	admin.PUT("/promotions/:id", h.updatePromotion)
	admin.DELETE("/promotions/:id", h.deletePromotion)
	admin.GET("/reviews", h.reviews)
	admin.GET("/ratings", h.reviews)
	admin.DELETE("/reviews/:id", h.deleteReview)

	return e, store, nil
}

func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := resolveError(err)
		if code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("dev API error")
		}
		_ = c.JSON(code, messageResponse{Message: msg})
	}
}

func resolveError(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, sentence(err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, sentence(err)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, sentence(err)
	case errors.Is(err, domain.ErrUserExists),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidStay),
		errors.Is(err, errMissingFields),
		errors.Is(err, errAlreadyRated),
		errors.Is(err, errNotCompleted),
		errors.Is(err, errNoRooms),
		errors.Is(err, errRoomNumberDup):
		return http.StatusBadRequest, sentence(err)
	}
	return http.StatusInternalServerError, "Internal server error"
}

// sentence capitalises an error text for display.
func sentence(err error) string {
	s := err.Error()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
