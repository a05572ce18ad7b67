// Package gate decides, from a session snapshot, whether a page may render,
// should show a loading placeholder, or must redirect elsewhere.
package gate

import (
	"net/url"

	"github.com/grandstay/hotel-web/internal/core/domain"
)

// Outcome is what the caller should do with the request.
type Outcome int

const (
	Render Outcome = iota
	Placeholder
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Placeholder:
		return "placeholder"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the result of a gate. Location is set only for Redirect.
type Decision struct {
	Outcome  Outcome
	Location string
}

const (
	homePath  = "/"
	loginPath = "/login"
	adminPath = "/admin"
)

func render() Decision                  { return Decision{Outcome: Render} }
func placeholder() Decision             { return Decision{Outcome: Placeholder} }
func redirect(location string) Decision { return Decision{Outcome: Redirect, Location: location} }

// PublicOnly guards pages for signed-out visitors (login, register).
func PublicOnly(s domain.Session) Decision {
	switch {
	case s.IsLoading():
		return placeholder()
	case s.IsAuthenticated():
		return redirect(homePath)
	}
	return render()
}

// Authenticated guards pages that need any signed-in user. When requireAdmin
// is set the identity must also hold the admin console capability. requested
// is the path (and query) that was asked for; it is carried to the login page
// so the user can be sent back after signing in.
func Authenticated(s domain.Session, requireAdmin bool, requested string) Decision {
	switch {
	case s.IsLoading():
		return placeholder()
	case !s.IsAuthenticated():
		return redirect(LoginURL(requested))
	case requireAdmin && !s.Identity.Can(domain.CapAdminConsole):
		return redirect(homePath)
	}
	return render()
}

// MemberOnly guards guest pages (checkout, my bookings). Admins are sent to
// their dashboard.
func MemberOnly(s domain.Session) Decision {
	switch {
	case s.IsLoading():
		return placeholder()
	case !s.IsAuthenticated():
		return redirect(loginPath)
	case s.IsAdmin():
		return redirect(adminPath)
	}
	return render()
}

// LoginURL returns the login page URL remembering next as the return target.
func LoginURL(next string) string {
	if !IsSafeNext(next) {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// IsSafeNext reports whether next is a local absolute path that may be used
// as a post-login redirect target.
func IsSafeNext(next string) bool {
	if next == "" || next[0] != '/' {
		return false
	}
	if len(next) > 1 && (next[1] == '/' || next[1] == '\\') {
		return false
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return false
	}
	return true
}

// AfterLogin picks where to go once the user has signed in.
func AfterLogin(s domain.Session, next string) string {
	if IsSafeNext(next) && next != loginPath {
		return next
	}
	if s.IsAdmin() {
		return adminPath
	}
	return homePath
}
