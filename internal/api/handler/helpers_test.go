package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/api/middleware"
	"github.com/grandstay/hotel-web/internal/api/view"
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/ports"
	"github.com/grandstay/hotel-web/internal/core/service"
	"github.com/grandstay/hotel-web/internal/infrastructure/db/memory"
)

type stubAuthAPI struct {
	me         *domain.Identity
	loginFn    func(ctx context.Context, email, password string) (*ports.AuthResponse, error)
	registerFn func(ctx context.Context, p ports.RegisterPayload) (*ports.AuthResponse, error)
}

func (s *stubAuthAPI) Login(ctx context.Context, email, password string) (*ports.AuthResponse, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthAPI) Register(ctx context.Context, p ports.RegisterPayload) (*ports.AuthResponse, error) {
	return s.registerFn(ctx, p)
}

func (s *stubAuthAPI) Me(context.Context) (*domain.Identity, error) {
	if s.me == nil {
		return nil, domain.ErrUnauthorized
	}
	return s.me.Clone(), nil
}

type stubRoomsAPI struct {
	listFn   func(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error)
	getFn    func(ctx context.Context, id string) (*domain.Room, error)
	availFn  func(ctx context.Context, q domain.AvailabilityQuery) ([]domain.RoomAvailability, error)
	promosFn func(ctx context.Context) ([]domain.Promotion, error)
}

func (s *stubRoomsAPI) List(ctx context.Context, f domain.RoomFilter) ([]domain.Room, error) {
	return s.listFn(ctx, f)
}

func (s *stubRoomsAPI) Get(ctx context.Context, id string) (*domain.Room, error) {
	return s.getFn(ctx, id)
}

func (s *stubRoomsAPI) Availability(ctx context.Context, q domain.AvailabilityQuery) ([]domain.RoomAvailability, error) {
	return s.availFn(ctx, q)
}

func (s *stubRoomsAPI) Promotions(ctx context.Context) ([]domain.Promotion, error) {
	return s.promosFn(ctx)
}

type stubBookingsAPI struct {
	createFn func(ctx context.Context, in domain.BookingInput) (*domain.Booking, error)
	mineFn   func(ctx context.Context) ([]domain.Booking, error)
	rateFn   func(ctx context.Context, in domain.ReviewInput) (*domain.Review, error)
}

func (s *stubBookingsAPI) Create(ctx context.Context, in domain.BookingInput) (*domain.Booking, error) {
	return s.createFn(ctx, in)
}

func (s *stubBookingsAPI) Mine(ctx context.Context) ([]domain.Booking, error) {
	return s.mineFn(ctx)
}

func (s *stubBookingsAPI) Rate(ctx context.Context, in domain.ReviewInput) (*domain.Review, error) {
	return s.rateFn(ctx, in)
}

// stubAdminAPI answers list calls from its fields and records mutations.
type stubAdminAPI struct {
	rooms      []domain.Room
	bookings   []domain.Booking
	promotions []domain.Promotion
	reviews    []domain.Review
	listErr    error
	mutateErr  error

	uploads   []uploaded
	statusTo  domain.BookingStatus
	deletedID string
}

type uploaded struct {
	roomID, field, name string
	body               string
}

func (s *stubAdminAPI) Rooms(context.Context) ([]domain.Room, error) { return s.rooms, s.listErr }

func (s *stubAdminAPI) CreateRoom(_ context.Context, in domain.RoomInput) (*domain.Room, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return &domain.Room{ID: "99", RoomNumber: in.RoomNumber}, nil
}

func (s *stubAdminAPI) UpdateRoom(_ context.Context, id string, in domain.RoomInput) (*domain.Room, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return &domain.Room{ID: domain.ID(id), RoomNumber: in.RoomNumber}, nil
}

func (s *stubAdminAPI) DeleteRoom(_ context.Context, id string) error {
	s.deletedID = id
	return s.mutateErr
}

func (s *stubAdminAPI) UploadRoomPhoto(_ context.Context, id string, up ports.Upload) error {
	if s.mutateErr != nil {
		return s.mutateErr
	}
	body, _ := io.ReadAll(up.Body)
	s.uploads = append(s.uploads, uploaded{roomID: id, field: up.FieldName, name: up.FileName, body: string(body)})
	return nil
}

func (s *stubAdminAPI) Bookings(context.Context) ([]domain.Booking, error) {
	return s.bookings, s.listErr
}

func (s *stubAdminAPI) UpdateBookingStatus(_ context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	s.statusTo = status
	return &domain.Booking{ID: domain.ID(id), Status: status}, nil
}

func (s *stubAdminAPI) Promotions(context.Context) ([]domain.Promotion, error) {
	return s.promotions, s.listErr
}

func (s *stubAdminAPI) CreatePromotion(_ context.Context, in domain.PromotionInput) (*domain.Promotion, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return &domain.Promotion{ID: "7", Title: in.Title}, nil
}

func (s *stubAdminAPI) UpdatePromotion(_ context.Context, id string, in domain.PromotionInput) (*domain.Promotion, error) {
	if s.mutateErr != nil {
		return nil, s.mutateErr
	}
	return &domain.Promotion{ID: domain.ID(id), Title: in.Title}, nil
}

func (s *stubAdminAPI) DeletePromotion(_ context.Context, id string) error {
	s.deletedID = id
	return s.mutateErr
}

func (s *stubAdminAPI) Reviews(context.Context) ([]domain.Review, error) {
	return s.reviews, s.listErr
}

func (s *stubAdminAPI) DeleteReview(_ context.Context, id string) error {
	s.deletedID = id
	return s.mutateErr
}

var (
	member = &domain.Identity{ID: "2", Name: "John Doe", Email: "john@example.com", Phone: "0812", Role: domain.RoleMember}
	admin  = &domain.Identity{ID: "1", Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin}
)

// newBrowser builds a bootstrapped browser. A non-nil identity is persisted
// and verified, so the browser starts signed in.
func newBrowser(t *testing.T, identity *domain.Identity, apis ports.APIs) *service.Browser {
	t.Helper()
	ctx := context.Background()

	creds := service.NewPersistedCredentials(memory.NewStore(), "test-browser", 0)
	if identity != nil {
		if err := creds.Save(ctx, domain.Credentials{Token: "token-" + identity.ID.String(), Identity: identity}); err != nil {
			t.Fatalf("seed credentials: %v", err)
		}
	}
	if apis.Auth == nil {
		apis.Auth = &stubAuthAPI{me: identity}
	}

	store := service.NewSessionStore(creds, apis.Auth, service.BootstrapPolicy{}, zerolog.Nop())
	store.Bootstrap(ctx)
	return &service.Browser{ID: "test-browser", Session: store, APIs: apis}
}

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	r, err := view.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e := echo.New()
	e.Renderer = r
	e.Validator = NewValidator()
	return e
}

// newContext prepares a request for b. A non-nil form is posted URL-encoded.
func newContext(e *echo.Echo, b *service.Browser, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if b != nil {
		middleware.SetBrowser(c, b)
	}
	return c, rec
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func assertBodyContains(t *testing.T, rec *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(rec.Body.String(), w) {
			t.Fatalf("expected body to contain %q, got:\n%s", w, rec.Body.String())
		}
	}
}
