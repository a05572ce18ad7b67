package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/core/gate"
	"github.com/grandstay/hotel-web/internal/core/ports"
)

const msgInvalidForm = "Please check the form and try again"

// SessionHandler serves the login, registration and logout pages.
type SessionHandler struct {
	log zerolog.Logger
}

func NewSessionHandler(log zerolog.Logger) *SessionHandler {
	return &SessionHandler{log: log}
}

// LoginData feeds the "login" template.
type LoginData struct {
	Email string
	Next  string
}

type loginForm struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
	Next     string `form:"next"`
}

func (h *SessionHandler) LoginForm(c echo.Context) error {
	data := LoginData{Next: c.QueryParam("next")}
	if !gate.IsSafeNext(data.Next) {
		data.Next = ""
	}
	return render(c, http.StatusOK, "login", newPage(c, "Log in", data))
}

// Login signs the browser in and sends it to the page it originally asked
// for, or to the landing page of its role.
func (h *SessionHandler) Login(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var form loginForm
	if err := c.Bind(&form); err != nil {
		return h.loginFailed(c, form, msgInvalidForm)
	}
	if err := c.Validate(&form); err != nil {
		return h.loginFailed(c, form, err.Error())
	}

	res := b.Session.Login(c.Request().Context(), form.Email, form.Password)
	if !res.Success {
		return h.loginFailed(c, form, res.Message)
	}
	h.log.Info().Str("browser_id", b.ID).Msg("browser signed in")
	return c.Redirect(http.StatusSeeOther, gate.AfterLogin(b.Session.Snapshot(), form.Next))
}

func (h *SessionHandler) loginFailed(c echo.Context, form loginForm, msg string) error {
	if !gate.IsSafeNext(form.Next) {
		form.Next = ""
	}
	p := newPage(c, "Log in", LoginData{Email: form.Email, Next: form.Next})
	p.Error = msg
	return render(c, http.StatusUnprocessableEntity, "login", p)
}

func (h *SessionHandler) RegisterForm(c echo.Context) error {
	return render(c, http.StatusOK, "register", newPage(c, "Register", ports.RegisterInput{}))
}

// Register creates an account and signs it in.
func (h *SessionHandler) Register(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}

	var in ports.RegisterInput
	if err := c.Bind(&in); err != nil {
		return h.registerFailed(c, in, msgInvalidForm)
	}
	if err := c.Validate(&in); err != nil {
		return h.registerFailed(c, in, err.Error())
	}

	res := b.Session.Register(c.Request().Context(), in)
	if !res.Success {
		return h.registerFailed(c, in, res.Message)
	}
	h.log.Info().Str("browser_id", b.ID).Msg("browser registered")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *SessionHandler) registerFailed(c echo.Context, in ports.RegisterInput, msg string) error {
	in.Password, in.ConfirmPassword = "", ""
	p := newPage(c, "Register", in)
	p.Error = msg
	return render(c, http.StatusUnprocessableEntity, "register", p)
}

// Logout forgets the session of this browser. It never fails.
func (h *SessionHandler) Logout(c echo.Context) error {
	b, err := browserFrom(c)
	if err != nil {
		return err
	}
	b.Session.Logout(c.Request().Context())
	return c.Redirect(http.StatusSeeOther, "/")
}
