package domain

import "errors"

// UnreachableMessage is shown whenever the API could not be reached.
const UnreachableMessage = "Cannot connect to server. Please make sure the server is running."

var (
	// ErrUnauthorized is returned when the API rejects the bearer credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetworkUnreachable is returned when a request never got a response.
	ErrNetworkUnreachable = errors.New("cannot connect to server")
	// ErrCorruptSession is returned when only half of the persisted pair exists
	// or the stored identity cannot be decoded.
	ErrCorruptSession = errors.New("corrupt persisted session")
	// ErrInvalidIdentity is returned when the API answers with an identity
	// that has no id or an unknown role.
	ErrInvalidIdentity = errors.New("invalid identity")
	// ErrNotFound is returned when an API resource does not exist.
	ErrNotFound = errors.New("not found")

	ErrInvalidStay        = errors.New("check-out must be after check-in")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("email already registered")
	ErrForbidden          = errors.New("access forbidden")
)

// MessageCarrier is implemented by errors that carry a human-readable message
// provided by the server.
type MessageCarrier interface {
	ServerMessage() string
}

// ServerMessage returns the server-provided message found in err's chain, or
// fallback when there is none.
func ServerMessage(err error, fallback string) string {
	var mc MessageCarrier
	if errors.As(err, &mc) {
		if msg := mc.ServerMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
