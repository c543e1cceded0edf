// Package identity determines who outgoing API requests are made on behalf of
// and turns that identity into request headers.
package identity

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Header names the backend reads the caller identity from.
const (
	HeaderUserID    = "X-Telegram-User-Id"
	HeaderUsername  = "X-Telegram-Username"
	HeaderFirstName = "X-Telegram-First-Name"
)

// User is the caller identity. Username and FirstName are optional; an empty
// string means the host did not supply the field.
type User struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	ID        int64  `json:"id"`
}

// Fallback is the fixed identity used outside the host shell, for local development.
func Fallback() *User {
	return &User{ID: 123456789, FirstName: "Test", Username: "test_user"}
}

// Source is the part of the host bridge the resolver needs.
type Source interface {
	// InitData returns the raw launch parameters; empty outside the host shell.
	InitData() string
	// User returns the host-supplied user, or nil when the launch carries none.
	User() *User
}

// Resolve returns the effective caller identity.
//
// With a host source carrying non-empty init data the host user is returned as
// is, which may be nil. Without one the Fallback identity is returned.
func Resolve(src Source) *User {
	if src == nil || src.InitData() == "" {
		return Fallback()
	}
	u := src.User()
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// Headers returns the identity headers for u. A nil user yields no headers,
// in which case the request goes out unauthenticated.
func Headers(u *User) map[string]string {
	headers := make(map[string]string, 3)
	if u == nil {
		return headers
	}
	headers[HeaderUserID] = strconv.FormatInt(u.ID, 10)
	if u.Username != "" {
		headers[HeaderUsername] = Encode(u.Username)
	}
	if u.FirstName != "" {
		headers[HeaderFirstName] = Encode(u.FirstName)
	}
	return headers
}

// Apply sets the identity headers of u on h.
func Apply(h http.Header, u *User) {
	for k, v := range Headers(u) {
		h.Set(k, v)
	}
}

// FromHeaders reads an identity back from request headers. It returns nil when
// the user id header is missing or malformed.
func FromHeaders(h http.Header) *User {
	rawID := h.Get(HeaderUserID)
	if rawID == "" {
		return nil
	}
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil
	}
	u := &User{ID: userID}
	if v := h.Get(HeaderUsername); v != "" {
		u.Username, _ = Decode(v)
	}
	if v := h.Get(HeaderFirstName); v != "" {
		u.FirstName, _ = Decode(v)
	}
	return u
}

// Encode percent-encodes a header value so non-ASCII text and separators
// survive transport. Spaces become %20, never '+'.
func Encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Decode reverses Encode.
func Decode(s string) (string, error) {
	return url.PathUnescape(s)
}
