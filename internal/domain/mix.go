package domain

import (
	"slices"
	"strconv"
)

// RequestType tags how a mix was generated.
type RequestType string

// Generation modes understood by the backend.
const (
	RequestBase     RequestType = "base"
	RequestProfile  RequestType = "profile"
	RequestSurprise RequestType = "surprise"
)

// Valid reports whether the request type is recognized.
func (t RequestType) Valid() bool {
	switch t {
	case RequestBase, RequestProfile, RequestSurprise:
		return true
	default:
		return false
	}
}

// Rating is a signed verdict on a mix.
type Rating int

// Allowed ratings. An absent rating is a nil *Rating.
const (
	Dislike Rating = -1
	Like    Rating = 1
)

// Valid reports whether r is Like or Dislike.
func (r Rating) Valid() bool {
	return r == Like || r == Dislike
}

// Glyph returns the display marker for the rating.
func (r Rating) Glyph() string {
	if r == Like {
		return "👍"
	}
	return "👎"
}

// Portion is one component of a stored mix. Portions are percentages by
// convention; nothing here checks that they add up to 100.
type Portion struct {
	Role    Role    `json:"role"`
	Portion float64 `json:"portion"`
}

// Mix is a stored flavor combination owned by a user.
type Mix struct {
	CreatedAt   Timestamp          `json:"created_at"`
	Components  map[string]Portion `json:"components"`
	Description *string            `json:"description"`
	Tips        *string            `json:"tips"`
	Rating      *Rating            `json:"rating"`
	Name        string             `json:"name"`
	RequestType RequestType        `json:"request_type"`
	ID          int64              `json:"id"`
	UserID      int64              `json:"user_id"`
	IsFavorite  bool               `json:"is_favorite"`
}

// ComponentNames returns the component names in lexical order.
func (m Mix) ComponentNames() []string {
	names := make([]string, 0, len(m.Components))
	for name := range m.Components {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Component is one entry of a freshly generated mix.
type Component struct {
	Tobacco string  `json:"tobacco"`
	Role    Role    `json:"role"`
	Portion float64 `json:"portion"`
}

// GeneratedMix is the immediate result of a generation request. The backend has
// already stored it, so ID refers to a durable Mix.
type GeneratedMix struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tips        string      `json:"tips"`
	Components  []Component `json:"components"`
	ID          int64       `json:"id"`
}

// FormatPortion renders a portion as a percentage without trailing zeros.
func FormatPortion(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}
