package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

const (
	msgRoomsUnavailable      = "Could not load rooms"
	msgPromotionsUnavailable = "Could not load promotions"
	msgAvailabilityFailed    = "Could not check availability"
)

// PublicHandler serves the pages anyone may see.
type PublicHandler struct {
	log zerolog.Logger
}

func NewPublicHandler(log zerolog.Logger) *PublicHandler {
	return &PublicHandler{log: log}
}

// HomeData feeds the "home" template.
type HomeData struct {
	Filter          domain.RoomFilter
	Rooms           []domain.Room
	RoomsError      string
	Promotions      []domain.Promotion
	PromotionsError string
}

// Home lists rooms and the promotion banner. Both are fetched concurrently
// and fail independently.
func (h *PublicHandler) Home(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var data HomeData
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &data.Filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room filter")
	}

	ctx := c.Request().Context()
	var (
		wg                 sync.WaitGroup
		roomsErr, promoErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		data.Rooms, roomsErr = b.Rooms.List(ctx, data.Filter)
	}()
	go func() {
		defer wg.Done()
		data.Promotions, promoErr = b.Rooms.Promotions(ctx)
	}()
	wg.Wait()

	if roomsErr != nil {
		if data.RoomsError, err = inlineError(roomsErr, msgRoomsUnavailable); err != nil {
			return err
		}
		h.log.Warn().Err(roomsErr).Msg("room listing failed")
	}
	if promoErr != nil {
		if data.PromotionsError, err = inlineError(promoErr, msgPromotionsUnavailable); err != nil {
			return err
		}
		h.log.Warn().Err(promoErr).Msg("promotion listing failed")
	}

	p := newPage(c, "Rooms", data)
	p.Retry = c.Request().URL.RequestURI()
	return render(c, http.StatusOK, "home", p)
}

// RoomData feeds the "room" template.
type RoomData struct {
	Room              *domain.Room
	Query             domain.AvailabilityQuery
	Checked           bool
	Availability      []domain.RoomAvailability
	AvailabilityError string
}

// RoomDetail shows one room and, when dates are given, its availability.
func (h *PublicHandler) RoomDetail(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	room, err := b.Rooms.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "room not found")
		}
		return err
	}

	data := RoomData{Room: room}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &data.Query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dates")
	}

	if data.Query.CheckIn != "" && data.Query.CheckOut != "" {
		data.Checked = true
		if _, err := domain.Nights(data.Query.CheckIn, data.Query.CheckOut); err != nil {
			data.AvailabilityError = err.Error()
		} else {
			if data.Query.RoomTypeID == "" {
				data.Query.RoomTypeID = room.RoomTypeID.String()
			}
			data.Availability, err = b.Rooms.Availability(ctx, data.Query)
			if err != nil {
				if data.AvailabilityError, err = inlineError(err, msgAvailabilityFailed); err != nil {
					return err
				}
			}
		}
	}

	title := room.Name
	if title == "" {
		title = "Room " + room.RoomNumber
	}
	return render(c, http.StatusOK, "room", newPage(c, title, data))
}
