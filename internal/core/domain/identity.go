package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Role is the authorization tier of an Identity.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Capability is a single permission granted to a role.
type Capability string

const (
	// CapBook allows checking out reservations and rating stays.
	CapBook Capability = "book"
	// CapAdminConsole allows access to the back-office pages.
	CapAdminConsole Capability = "admin_console"
)

var roleCapabilities = map[Role][]Capability{
	RoleMember: {CapBook},
	RoleAdmin:  {CapAdminConsole},
}

// Capabilities returns the set of capabilities granted to r.
func (r Role) Capabilities() map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(roleCapabilities[r]))
	for _, c := range roleCapabilities[r] {
		set[c] = struct{}{}
	}
	return set
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// ID is an opaque server-assigned identifier. The API may send it as a JSON
// number or a JSON string; both decode to the same textual form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// Int returns the identifier as an integer when it is numeric.
func (id ID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

func (id ID) String() string { return string(id) }

// Identity is the authenticated principal.
type Identity struct {
	ID    ID     `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
	Phone string `json:"phone,omitempty"`
}

// Can reports whether the identity's role grants capability c.
func (i *Identity) Can(c Capability) bool {
	if i == nil {
		return false
	}
	_, ok := i.Role.Capabilities()[c]
	return ok
}

// Validate reports ErrInvalidIdentity when i lacks an id or a known role.
func (i *Identity) Validate() error {
	switch {
	case i == nil:
		return ErrInvalidIdentity
	case i.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidIdentity)
	case !i.Role.Valid():
		return fmt.Errorf("%w: unknown role %q", ErrInvalidIdentity, i.Role)
	}
	return nil
}

// Clone returns a deep copy, or nil for a nil identity.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

// Credentials is the persisted pair: a bearer token and the identity it
// was issued for. One is never stored without the other.
type Credentials struct {
	Token    string
	Identity *Identity
}
