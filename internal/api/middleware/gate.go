package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/api/metrics"
	"github.com/grandstay/hotel-web/internal/core/domain"
	"github.com/grandstay/hotel-web/internal/core/gate"
)

// Gate adapts the route authorization rules to Echo. It must run after
// Browser.
type Gate struct {
	placeholder echo.HandlerFunc
	settle      time.Duration
}

// NewGate returns a Gate that serves placeholder while a session is still
// being verified. settle is how long a request may wait for verification to
// finish before the placeholder is shown; zero never waits.
func NewGate(placeholder echo.HandlerFunc, settle time.Duration) *Gate {
	return &Gate{placeholder: placeholder, settle: settle}
}

// PublicOnly admits only signed-out visitors.
func (g *Gate) PublicOnly() echo.MiddlewareFunc {
	return g.guard("public_only", func(s domain.Session, _ string) gate.Decision {
		return gate.PublicOnly(s)
	})
}

// Authenticated admits any signed-in user; with requireAdmin only those
// holding the admin console capability.
func (g *Gate) Authenticated(requireAdmin bool) echo.MiddlewareFunc {
	name := "authenticated"
	if requireAdmin {
		name = "admin"
	}
	return g.guard(name, func(s domain.Session, requested string) gate.Decision {
		return gate.Authenticated(s, requireAdmin, requested)
	})
}

// MemberOnly admits signed-in guests and sends admins to their dashboard.
func (g *Gate) MemberOnly() echo.MiddlewareFunc {
	return g.guard("member_only", func(s domain.Session, _ string) gate.Decision {
		return gate.MemberOnly(s)
	})
}

func (g *Gate) guard(name string, decide func(domain.Session, string) gate.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			b := CurrentBrowser(c)
			if b == nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "browser session missing")
			}

			snap := b.Session.Snapshot()
			if snap.IsLoading() && g.settle > 0 {
				t := time.NewTimer(g.settle)
				select {
				case <-b.Session.Done():
				case <-t.C:
				case <-c.Request().Context().Done():
				}
				t.Stop()
				snap = b.Session.Snapshot()
			}

			d := decide(snap, c.Request().URL.RequestURI())
			metrics.GateDecisionsTotal.WithLabelValues(name, d.Outcome.String()).Inc()

			switch d.Outcome {
			case gate.Placeholder:
				return g.placeholder(c)
			case gate.Redirect:
				return c.Redirect(http.StatusFound, d.Location)
			}
			return next(c)
		}
	}
}
