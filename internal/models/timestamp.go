package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Timestamp layouts accepted on input. Values without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp reads s in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp is an optional date that never fails to decode. Null, non-string
// and unreadable values decode as not set.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

func NewTimestamp(t *time.Time) Timestamp {
	if t == nil {
		return Timestamp{}
	}
	return Timestamp{Time: *t, Valid: true}
}

// Ptr returns a fresh pointer to the time, or nil when not set.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	*ts = Timestamp{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	if t, ok := ParseTimestamp(s); ok {
		*ts = Timestamp{Time: t, Valid: true}
	}
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(ts.Time)
}

// UnmarshalJSON reads created_at through Timestamp; an unreadable value
// leaves CreatedAt nil.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	aux := struct {
		*plain
		CreatedAt Timestamp `json:"created_at"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.CreatedAt = aux.CreatedAt.Ptr()
	return nil
}
