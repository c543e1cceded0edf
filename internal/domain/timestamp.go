package domain

import (
	"bytes"
	"fmt"
	"time"
)

// naiveLayout is how the backend serializes timestamps stored without a zone.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a creation time as sent by the backend. It accepts RFC 3339
// values and zone-less ISO values, which are read as UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("timestamp: expected string, got %s", data)
	}
	raw := string(data[1 : len(data)-1])

	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, raw, time.UTC)
	if err != nil {
		return fmt.Errorf("timestamp: parse %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
