package domain

// SessionState is the lifecycle state of a browser session.
type SessionState string

const (
	StateUninitialized   SessionState = "uninitialized"
	StateLoading         SessionState = "loading"
	StateAuthenticated   SessionState = "authenticated"
	StateUnauthenticated SessionState = "unauthenticated"
)

// Session is the derived view over the in-memory identity and credential.
type Session struct {
	State         SessionState `json:"state"`
	Identity      *Identity    `json:"user,omitempty"`
	HasCredential bool         `json:"-"`
	// Stale is set when the stored identity could not be verified because the
	// server was unreachable. It is still treated as authenticated.
	Stale bool `json:"stale,omitempty"`
}

func (s Session) IsLoading() bool { return s.State == StateLoading }

func (s Session) IsAuthenticated() bool { return s.Identity != nil && s.HasCredential }

func (s Session) IsAdmin() bool { return s.Identity != nil && s.Identity.Role == RoleAdmin }

func (s Session) IsMember() bool { return s.Identity != nil && s.Identity.Role == RoleMember }
