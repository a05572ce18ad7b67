package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/grandstay/hotel-web/internal/api/middleware"
	"github.com/grandstay/hotel-web/internal/api/view"
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/infrastructure/apiclient"
)

const loginPath = "/login"

// errorResponse is the canonical error envelope for the JSON endpoints.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends pages whose credential was rejected to the login page.
//   - Maps known domain and API errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error page with a retry link, or {"error": "<message>"} for
//     the JSON endpoints.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		jsonRequest := wantsJSON(c)
		if errors.Is(err, domain.ErrUnauthorized) && !jsonRequest {
			// The session was already cleared when the API answered 401.
			_ = c.Redirect(http.StatusFound, loginPath)
			return
		}

		code, msg := resolveError(err, log, c)
		if jsonRequest {
			_ = c.JSON(code, errorResponse{Error: msg})
			return
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		p := view.Page{Title: http.StatusText(code), Error: msg, Retry: retryLink(c)}
		if b := middleware.CurrentBrowser(c); b != nil {
			p.Session = b.Session.Snapshot()
		}
		if rerr := c.Render(code, "error", p); rerr != nil {
			log.Error().Err(rerr).Msg("rendering error page failed")
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrNetworkUnreachable):
		log.Warn().Err(err).Str("path", c.Path()).Msg("hotel API unreachable")
		return http.StatusServiceUnavailable, domain.UnreachableMessage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, domain.ServerMessage(err, "access forbidden")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ServerMessage(err, "not found")
	case errors.Is(err, domain.ErrInvalidStay):
		return http.StatusUnprocessableEntity, err.Error()
	}

	// Any other API answer keeps its status and server message.
	if status := apiclient.StatusOf(err); status >= http.StatusBadRequest {
		log.Warn().Err(err).Str("path", c.Path()).Int("upstream_status", status).Msg("hotel API error")
		return status, domain.ServerMessage(err, http.StatusText(status))
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}

func wantsJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// retryLink repeats a failed page load; a failed form post goes back to the
// form.
func retryLink(c echo.Context) string {
	if c.Request().Method == http.MethodGet {
		return c.Request().URL.RequestURI()
	}
	return c.Request().URL.Path
}
