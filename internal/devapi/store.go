package devapi

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

var (
	errRoomNotFound      = fmt.Errorf("room %w", domain.ErrNotFound)
	errRoomTypeNotFound  = fmt.Errorf("room type %w", domain.ErrNotFound)
	errBookingNotFound   = fmt.Errorf("booking %w", domain.ErrNotFound)
	errPromotionNotFound = fmt.Errorf("promotion %w", domain.ErrNotFound)
	errReviewNotFound    = fmt.Errorf("rating %w", domain.ErrNotFound)
	errUserNotFound      = fmt.Errorf("user %w", domain.ErrNotFound)

	errMissingFields = errors.New("email and password required")
	errAlreadyRated  = errors.New("booking already rated")
	errNotCompleted  = errors.New("only completed stays can be rated")
	errNoRooms       = errors.New("a booking needs at least one room")
	errRoomNumberDup = errors.New("room number already exists")
)

type account struct {
	identity     domain.Identity
	passwordHash []byte
}

// Store holds the whole hotel in memory. It is safe for concurrent use.
type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	accounts   map[domain.ID]*account
	byEmail    map[string]domain.ID
	roomTypes  map[domain.ID]domain.RoomType
	rooms      map[domain.ID]*domain.Room
	promotions map[domain.ID]*domain.Promotion
	bookings   map[domain.ID]*domain.Booking
	reviews    map[domain.ID]*domain.Review
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		now:        time.Now,
		accounts:   make(map[domain.ID]*account),
		byEmail:    make(map[string]domain.ID),
		roomTypes:  make(map[domain.ID]domain.RoomType),
		rooms:      make(map[domain.ID]*domain.Room),
		promotions: make(map[domain.ID]*domain.Promotion),
		bookings:   make(map[domain.ID]*domain.Booking),
		reviews:    make(map[domain.ID]*domain.Review),
	}
}

// nextID must be called with mu held.
func (s *Store) nextID() domain.ID {
	s.seq++
	return domain.ID(strconv.FormatInt(s.seq, 10))
}

func byID[T any](m map[domain.ID]*T, id func(*T) domain.ID) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, *v)
	}
	slices.SortFunc(out, func(a, b T) int {
		x, _ := id(&a).Int()
		y, _ := id(&b).Int()
		return int(x - y)
	})
	return out
}

// ── Accounts ─────────────────────────────────────────────────────────────────

func (s *Store) createAccount(identity domain.Identity, hash []byte) (domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(identity.Email)
	if _, ok := s.byEmail[email]; ok {
		return domain.Identity{}, domain.ErrUserExists
	}
	identity.ID = s.nextID()
	identity.Email = email
	s.accounts[identity.ID] = &account{identity: identity, passwordHash: hash}
	s.byEmail[email] = identity.ID
	return identity, nil
}

func (s *Store) accountByEmail(email string) (*account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, errUserNotFound
	}
	acc := *s.accounts[id]
	return &acc, nil
}

// Account returns the identity of a registered user.
func (s *Store) Account(id domain.ID) (domain.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return domain.Identity{}, errUserNotFound
	}
	return acc.identity, nil
}

// ── Rooms ────────────────────────────────────────────────────────────────────

// AddRoomType registers a room type and returns it with its id.
func (s *Store) AddRoomType(rt domain.RoomType) domain.RoomType {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt.ID = s.nextID()
	s.roomTypes[rt.ID] = rt
	return rt
}

// withType must be called with mu held.
func (s *Store) withType(r domain.Room) domain.Room {
	if rt, ok := s.roomTypes[r.RoomTypeID]; ok {
		r.RoomType = &rt
		if r.Name == "" {
			r.Name = rt.Name + " " + r.RoomNumber
		}
	}
	r.Photos = slices.Clone(r.Photos)
	return r
}

// Rooms lists rooms matching f. Only available rooms are listed unless all
// is set.
func (s *Store) Rooms(f domain.RoomFilter, all bool) []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Room
	for _, r := range byID(s.rooms, func(r *domain.Room) domain.ID { return r.ID }) {
		switch {
		case !all && r.Status != "available":
		case f.RoomType != "" && r.RoomTypeID.String() != f.RoomType:
		case f.MinPrice > 0 && r.PriceNoBreakfast < f.MinPrice:
		case f.MaxPrice > 0 && r.PriceNoBreakfast > f.MaxPrice:
		case f.Capacity > 0 && r.Capacity < f.Capacity:
		default:
			out = append(out, s.withType(r))
		}
	}
	return out
}

func (s *Store) Room(id domain.ID) (domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, errRoomNotFound
	}
	return s.withType(*r), nil
}

func (s *Store) CreateRoom(in domain.RoomInput) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkRoom("", in); err != nil {
		return domain.Room{}, err
	}
	r := &domain.Room{ID: s.nextID()}
	applyRoom(r, in)
	s.rooms[r.ID] = r
	return s.withType(*r), nil
}

func (s *Store) UpdateRoom(id domain.ID, in domain.RoomInput) (domain.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, errRoomNotFound
	}
	if err := s.checkRoom(id, in); err != nil {
		return domain.Room{}, err
	}
	applyRoom(r, in)
	return s.withType(*r), nil
}

// checkRoom must be called with mu held.
func (s *Store) checkRoom(self domain.ID, in domain.RoomInput) error {
	if _, ok := s.roomTypes[domain.ID(in.RoomTypeID)]; !ok {
		return errRoomTypeNotFound
	}
	for id, r := range s.rooms {
		if id != self && r.RoomNumber == in.RoomNumber {
			return errRoomNumberDup
		}
	}
	return nil
}

func applyRoom(r *domain.Room, in domain.RoomInput) {
	r.RoomTypeID = domain.ID(in.RoomTypeID)
	r.RoomNumber = in.RoomNumber
	r.Capacity = in.Capacity
	r.PriceNoBreakfast = in.PriceNoBreakfast
	r.PriceWithBreakfast = in.PriceWithBreakfast
	r.Description = in.Description
	r.Facilities = slices.Clone(in.Facilities)
	r.Status = in.Status
	if r.Status == "" {
		r.Status = "available"
	}
}

func (s *Store) DeleteRoom(id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; !ok {
		return errRoomNotFound
	}
	delete(s.rooms, id)
	return nil
}

// AddPhotos records uploaded photo names. The files themselves are not kept.
func (s *Store) AddPhotos(id domain.ID, names []string) ([]domain.RoomPhoto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, errRoomNotFound
	}
	added := make([]domain.RoomPhoto, 0, len(names))
	for _, name := range names {
		p := domain.RoomPhoto{ID: s.nextID()}
		p.URL = fmt.Sprintf("/uploads/rooms/%s/%s_%s", id, p.ID, name)
		added = append(added, p)
	}
	r.Photos = append(r.Photos, added...)
	return added, nil
}

// Availability reports, for each room of the requested type, whether it is
// free over the whole stay.
func (s *Store) Availability(q domain.AvailabilityQuery) ([]domain.RoomAvailability, error) {
	if _, err := domain.Nights(q.CheckIn, q.CheckOut); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	taken := make(map[domain.ID]bool)
	for _, b := range s.bookings {
		if b.Status == domain.BookingCancelled || b.Status == domain.BookingCheckedOut {
			continue
		}
		// YYYY-MM-DD strings order like the dates they name.
		if b.CheckIn < q.CheckOut && q.CheckIn < b.CheckOut {
			for _, br := range b.Rooms {
				taken[br.RoomID] = true
			}
		}
	}

	var out []domain.RoomAvailability
	for _, r := range byID(s.rooms, func(r *domain.Room) domain.ID { return r.ID }) {
		if q.RoomTypeID != "" && r.RoomTypeID.String() != q.RoomTypeID {
			continue
		}
		out = append(out, domain.RoomAvailability{
			RoomID:     r.ID,
			RoomNumber: r.RoomNumber,
			Available:  r.Status == "available" && !taken[r.ID],
		})
	}
	return out, nil
}

// ── Promotions ───────────────────────────────────────────────────────────────

func (s *Store) Promotions(activeOnly bool) []domain.Promotion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Promotion
	for _, p := range byID(s.promotions, func(p *domain.Promotion) domain.ID { return p.ID }) {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Store) CreatePromotion(in domain.PromotionInput) domain.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &domain.Promotion{ID: s.nextID()}
	applyPromotion(p, in)
	s.promotions[p.ID] = p
	return *p
}

func (s *Store) UpdatePromotion(id domain.ID, in domain.PromotionInput) (domain.Promotion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promotions[id]
	if !ok {
		return domain.Promotion{}, errPromotionNotFound
	}
	applyPromotion(p, in)
	return *p, nil
}

func applyPromotion(p *domain.Promotion, in domain.PromotionInput) {
	p.Title = in.Title
	p.Description = in.Description
	p.DiscountPercent = in.DiscountPercent
	p.Code = in.Code
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
	p.Active = in.Active
	p.ImageURL = in.ImageURL
}

func (s *Store) DeletePromotion(id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promotions[id]; !ok {
		return errPromotionNotFound
	}
	delete(s.promotions, id)
	return nil
}

// ── Bookings ─────────────────────────────────────────────────────────────────

// CreateBooking stores a pending reservation for userID. Conflicting
// reservations are not detected.
func (s *Store) CreateBooking(userID domain.ID, in domain.BookingInput) (domain.Booking, error) {
	if _, err := domain.Nights(in.CheckIn, in.CheckOut); err != nil {
		return domain.Booking{}, err
	}
	if len(in.Rooms) == 0 {
		return domain.Booking{}, errNoRooms
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.BookingRoom, 0, len(in.Rooms))
	for _, br := range in.Rooms {
		r, ok := s.rooms[br.RoomID]
		if !ok {
			return domain.Booking{}, errRoomNotFound
		}
		if br.Quantity < 1 {
			br.Quantity = 1
		}
		br.PricePerNight = r.PricePerNight(br.BreakfastOption)
		lines = append(lines, br)
	}

	b := &domain.Booking{
		ID:            s.nextID(),
		UserID:        userID,
		GuestName:     in.GuestName,
		NIK:           in.NIK,
		Phone:         in.Phone,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		TotalGuests:   in.TotalGuests,
		PaymentMethod: in.PaymentMethod,
		TotalPrice:    in.TotalPrice,
		Status:        domain.BookingPending,
		Rooms:         lines,
		CreatedAt:     s.now().UTC(),
	}
	s.bookings[b.ID] = b
	return *b, nil
}

// Bookings lists the reservations of userID, or all of them when userID is
// empty. Newest first.
func (s *Store) Bookings(userID domain.ID) []domain.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Booking
	for _, b := range byID(s.bookings, func(b *domain.Booking) domain.ID { return b.ID }) {
		if userID != "" && b.UserID != userID {
			continue
		}
		b.Rooms = slices.Clone(b.Rooms)
		out = append(out, b)
	}
	slices.Reverse(out)
	return out
}

// SetBookingStatus applies an admin status change.
func (s *Store) SetBookingStatus(id domain.ID, status domain.BookingStatus) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return domain.Booking{}, errBookingNotFound
	}
	if !b.Status.CanTransitionTo(status) {
		return domain.Booking{}, domain.ErrInvalidTransition
	}
	b.Status = status
	return *b, nil
}

// ── Reviews ──────────────────────────────────────────────────────────────────

// CreateReview rates a completed stay of userID. A stay is rated once.
func (s *Store) CreateReview(userID domain.ID, in domain.ReviewInput) (domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[domain.ID(in.BookingID)]
	if !ok || b.UserID != userID {
		return domain.Review{}, errBookingNotFound
	}
	if b.Status != domain.BookingCheckedOut {
		return domain.Review{}, errNotCompleted
	}
	for _, r := range s.reviews {
		if r.BookingID == b.ID {
			return domain.Review{}, errAlreadyRated
		}
	}

	r := &domain.Review{
		ID:        s.nextID(),
		UserID:    userID,
		BookingID: b.ID,
		GuestName: b.GuestName,
		Star:      in.Star,
		Comment:   in.Comment,
		CreatedAt: s.now().UTC(),
	}
	if len(b.Rooms) > 0 {
		if room, ok := s.rooms[b.Rooms[0].RoomID]; ok {
			rc := s.withType(*room)
			r.Room = &rc
		}
	}
	s.reviews[r.ID] = r
	return *r, nil
}

func (s *Store) Reviews() []domain.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return byID(s.reviews, func(r *domain.Review) domain.ID { return r.ID })
}

func (s *Store) DeleteReview(id domain.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return errReviewNotFound
	}
	delete(s.reviews, id)
	return nil
}
