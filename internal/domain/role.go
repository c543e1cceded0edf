package domain

import (
	"encoding/json"
	"strings"
)

// RoleKind is the closed set of component roles the client knows how to display.
type RoleKind int

// Known component roles. RoleUnknown keeps whatever the backend sent.
const (
	RoleUnknown RoleKind = iota
	RoleBase
	RoleComplement
	RoleAccent
)

// Wire values for the known roles.
const (
	roleBaseWire       = "база"
	roleComplementWire = "дополнение"
	roleAccentWire     = "акцент"
)

// Role is a component role tag. Known values parse to a RoleKind; anything else
// is kept verbatim as RoleUnknown so it survives a round trip.
type Role struct {
	raw  string
	Kind RoleKind
}

// Predefined roles.
var (
	Base       = Role{Kind: RoleBase, raw: roleBaseWire}
	Complement = Role{Kind: RoleComplement, raw: roleComplementWire}
	Accent     = Role{Kind: RoleAccent, raw: roleAccentWire}
)

// ParseRole maps a wire string to a Role. English aliases are accepted.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case roleBaseWire, "base":
		return Base
	case roleComplementWire, "complement", "addition":
		return Complement
	case roleAccentWire, "accent":
		return Accent
	default:
		return Role{Kind: RoleUnknown, raw: s}
	}
}

// String returns the wire value.
func (r Role) String() string {
	return r.raw
}

// Known reports whether the role is one of the known kinds.
func (r Role) Known() bool {
	return r.Kind != RoleUnknown
}

// Glyph returns the display marker for the role.
func (r Role) Glyph() string {
	switch r.Kind {
	case RoleBase:
		return "🔵"
	case RoleComplement:
		return "🟢"
	case RoleAccent:
		return "🟡"
	default:
		return "⚪"
	}
}

// MarshalJSON implements json.Marshaler.
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.raw)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*r = ParseRole(s)
	return nil
}
