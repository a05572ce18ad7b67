package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/api/middleware"
	"github.com/grandstay/hotel-web/internal/api/view"
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/service"
)

// browserFrom returns the browser injected by the Browser middleware. A
// missing browser means the route was registered outside the site group.
func browserFrom(c echo.Context) (*service.Browser, error) {
	b := middleware.CurrentBrowser(c)
	if b == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "browser session missing")
	}
	return b, nil
}

// newPage builds the template data with the session snapshot taken now, so
// the navigation reflects any login or logout done by the handler.
func newPage(c echo.Context, title string, data any) view.Page {
	p := view.Page{Title: title, Data: data}
	if b := middleware.CurrentBrowser(c); b != nil {
		p.Session = b.Session.Snapshot()
	}
	return p
}

func render(c echo.Context, code int, name string, p view.Page) error {
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.Render(code, name, p)
}

// inlineError turns an API failure on a form submission into a message shown
// next to the form. Unauthorized failures are returned unchanged so the error
// handler can send the browser to the login page.
func inlineError(err error, fallback string) (string, error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "", err
	case errors.Is(err, domain.ErrNetworkUnreachable):
		return domain.UnreachableMessage, nil
	}
	return domain.ServerMessage(err, fallback), nil
}

