package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// SessionAPIHandler exposes the session of the calling browser as JSON for
// scripts running in the pages.
type SessionAPIHandler struct{}

func NewSessionAPIHandler() *SessionAPIHandler {
	return &SessionAPIHandler{}
}

type sessionResponse struct {
	State         domain.SessionState `json:"state"`
	Authenticated bool                `json:"authenticated"`
	Admin         bool                `json:"admin"`
	Stale         bool                `json:"stale,omitempty"`
	User          *domain.Identity    `json:"user,omitempty"`
}

type sessionLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{
		State:         s.State,
		Authenticated: s.IsAuthenticated(),
		Admin:         s.IsAdmin(),
		Stale:         s.Stale,
		User:          s.Identity,
	}
}

// Get returns the current session of the browser.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /api/session [get]
func (h *SessionAPIHandler) Get(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSessionResponse(b.Session.Snapshot()))
}

// Login signs the browser in.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      sessionLoginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  ports.AuthResult
// @Router       /api/session/login [post]
func (h *SessionAPIHandler) Login(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var req sessionLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res := b.Session.Login(c.Request().Context(), req.Email, req.Password)
	if !res.Success {
		return c.JSON(http.StatusUnauthorized, res)
	}
	return c.JSON(http.StatusOK, toSessionResponse(b.Session.Snapshot()))
}

// Logout forgets the session of the browser.
//
// @Summary      Logout
// @Tags         session
// @Success      204
// @Router       /api/session/logout [post]
func (h *SessionAPIHandler) Logout(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	b.Session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
