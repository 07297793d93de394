package portfolio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a point in time in the portfolio file. It is written as
// RFC 3339 and read from RFC 3339 or from an ISO 8601 date-time with no
// zone, which is taken as UTC.
type Timestamp struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// NewTimestamp returns t in UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// MarshalJSON writes the time as an RFC 3339 string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// UnmarshalJSON reads an RFC 3339 or zone-less ISO 8601 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return parsed, nil
	}
	for _, layout := range naiveLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp %q is not an ISO 8601 date-time", s)
}

var (
	_ json.Marshaler   = Timestamp{}
	_ json.Unmarshaler = (*Timestamp)(nil)
)
