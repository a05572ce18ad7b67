package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/grandstay/hotel-web/internal/core/service"
)

const (
	// BrowserCookie carries the signed browser id.
	BrowserCookie = "hw_browser"
	browserKey    = "browser"
	sidClaim      = "sid"
)

// BrowserRegistry hands out the live session of a browser id.
type BrowserRegistry interface {
	Acquire(browserID string) *service.Browser
}

// BrowserOptions configures the browser id cookie.
type BrowserOptions struct {
	Secret string
	Secure bool
	MaxAge time.Duration
}

// Browser identifies the browser from its signed cookie, issuing a new id when
// the cookie is missing or invalid, and injects its session into the context.
func Browser(reg BrowserRegistry, opts BrowserOptions) echo.MiddlewareFunc {
	secret := []byte(opts.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if ck, err := c.Cookie(BrowserCookie); err == nil {
				id = parseBrowserToken(ck.Value, secret)
			}

			if id == "" {
				id = uuid.NewString()
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
					sidClaim: id,
					"iat":    time.Now().Unix(),
				}).SignedString(secret)
				if err != nil {
					return err
				}
				c.SetCookie(&http.Cookie{
					Name:     BrowserCookie,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(opts.MaxAge.Seconds()),
					HttpOnly: true,
					Secure:   opts.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			SetBrowser(c, reg.Acquire(id))
			return next(c)
		}
	}
}

func parseBrowserToken(raw string, secret []byte) string {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	sid, _ := claims[sidClaim].(string)
	if _, err := uuid.Parse(sid); err != nil {
		return ""
	}
	return sid
}

// SetBrowser attaches b to the request context.
func SetBrowser(c echo.Context, b *service.Browser) {
	c.Set(browserKey, b)
}

// CurrentBrowser returns the browser injected by Browser, or nil.
func CurrentBrowser(c echo.Context) *service.Browser {
	b, _ := c.Get(browserKey).(*service.Browser)
	return b
}
