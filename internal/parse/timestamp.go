package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// layouts lists the timestamp shapes the backend has been seen to emit,
// most specific first. Zone-less values are read as UTC.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Time parses a backend timestamp string.
func Time(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", raw)
}

// Timestamp is a backend timestamp as received on the wire. Mongo-backed
// endpoints sometimes send {"$date": "..."} instead of a plain string; both
// decode to the inner string. The value is kept raw so that unparseable input
// can still be displayed.
type Timestamp string

// UnmarshalJSON accepts a string, null, or a {"$date": ...} wrapper.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*ts = Timestamp(s)
	case '{':
		var wrapped struct {
			Date json.RawMessage `json:"$date"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		if len(wrapped.Date) == 0 {
			*ts = ""
			return nil
		}
		return ts.UnmarshalJSON(wrapped.Date)
	default:
		// Epoch milliseconds, as in {"$date": 1700000000000}.
		var ms int64
		if err := json.Unmarshal(data, &ms); err != nil {
			return fmt.Errorf("unsupported timestamp value %s", data)
		}
		*ts = Timestamp(time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
	}
	return nil
}

// Time parses the timestamp; ok is false when it is empty or malformed.
func (ts Timestamp) Time() (t time.Time, ok bool) {
	if ts == "" {
		return time.Time{}, false
	}
	t, err := Time(string(ts))
	return t, err == nil
}

// String returns the raw wire value.
func (ts Timestamp) String() string { return string(ts) }
