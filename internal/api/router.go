package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/grandstay/hotel-web/internal/api/handler"
	"github.com/grandstay/hotel-web/internal/api/middleware"
	"github.com/grandstay/hotel-web/internal/api/view"
)

// Deps is everything the router needs to build the site.
type Deps struct {
	Registry middleware.BrowserRegistry
	Cookie   middleware.BrowserOptions
	// GateSettle is how long a gated page waits for session verification
	// before the loading placeholder is served.
	GateSettle   time.Duration
	PaymentDelay time.Duration
	Checks       map[string]handler.Check
	// Registerer receives the HTTP request metrics. Defaults to the global
	// Prometheus registry.
	Registerer prometheus.Registerer
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) (*echo.Echo, error) {
	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "hotel_web",
		Skipper:    isOpsPath,
		Registerer: d.Registerer,
	}))

	// --- Ops (no browser session) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Checks)

	e.GET("/health", healthHandler.Liveness)           // liveness
	e.GET("/health/ready", readinessHandler.Readiness) // readiness
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/favicon.ico", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	// --- Site ---
	public := handler.NewPublicHandler(d.Log)
	sessions := handler.NewSessionHandler(d.Log)
	member := handler.NewMemberHandler(d.PaymentDelay, d.Log)
	admin := handler.NewAdminHandler(d.Log)
	sessionAPI := handler.NewSessionAPIHandler()
	gate := middleware.NewGate(handler.Loading, d.GateSettle)

	site := e.Group("", middleware.Browser(d.Registry, d.Cookie))

	site.GET("/", public.Home)
	site.GET("/rooms/:id", public.RoomDetail)

	guestOnly := gate.PublicOnly()
	site.GET("/login", sessions.LoginForm, guestOnly)
	site.POST("/login", sessions.Login, guestOnly)
	site.GET("/register", sessions.RegisterForm, guestOnly)
	site.POST("/register", sessions.Register, guestOnly)
	site.POST("/logout", sessions.Logout)

	memberOnly := gate.MemberOnly()
	site.GET("/checkout", member.CheckoutPage, memberOnly)
	site.POST("/checkout", member.Checkout, memberOnly)
	site.GET("/my-bookings", member.MyBookings, memberOnly)
	site.GET("/rate/:bookingId", member.RatePage, memberOnly)
	site.POST("/rate/:bookingId", member.Rate, memberOnly)

	back := site.Group("/admin", gate.Authenticated(true))
	back.GET("", admin.Dashboard)
	back.GET("/rooms", admin.Rooms)
	back.POST("/rooms", admin.CreateRoom)
	back.POST("/rooms/:id", admin.UpdateRoom)
	back.POST("/rooms/:id/delete", admin.DeleteRoom)
	back.POST("/rooms/:id/photos", admin.UploadRoomPhoto)
	back.GET("/bookings", admin.Bookings)
	back.POST("/bookings/:id/status", admin.UpdateBookingStatus)
	back.GET("/promotions", admin.Promotions)
	back.POST("/promotions", admin.CreatePromotion)
	back.POST("/promotions/:id", admin.UpdatePromotion)
	back.POST("/promotions/:id/delete", admin.DeletePromotion)
	back.GET("/reviews", admin.Reviews)
	back.GET("/ratings", admin.Reviews)
	back.POST("/reviews/:id/delete", admin.DeleteReview)

	session := site.Group("/api/session")
	session.GET("", sessionAPI.Get)
	session.POST("/login", sessionAPI.Login)
	session.POST("/logout", sessionAPI.Logout)

	// Unknown pages fall back to home.
	site.RouteNotFound("/*", func(c echo.Context) error {
		if wantsJSON(c) {
			return echo.ErrNotFound
		}
		return c.Redirect(http.StatusFound, "/")
	})

	return e, nil
}

func isOpsPath(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
