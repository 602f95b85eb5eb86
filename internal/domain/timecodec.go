package domain

import (
	"fmt"
	"time"
)

// TimestampLayout is the persisted form of every timestamp: millisecond
// precision, always UTC with an explicit offset.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TimeCodec converts timestamps to and from text at a serialization boundary
type TimeCodec interface {
	Format(t time.Time) string
	Parse(s string) (time.Time, error)
}

// LayoutCodec is a TimeCodec backed by a fixed layout.
// Formatting normalizes to UTC; the zero time formats as "".
type LayoutCodec struct {
	Layout string
}

// DefaultTimeCodec is the codec used when none is configured
var DefaultTimeCodec TimeCodec = LayoutCodec{Layout: TimestampLayout}

// Format renders t using the codec layout
func (c LayoutCodec) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(c.Layout)
}

// Parse reads a timestamp written by Format. RFC 3339 is accepted as a
// fallback so hand-edited files still load.
func (c LayoutCodec) Parse(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(c.Layout, s)
	if err == nil {
		return t.UTC(), nil
	}
	if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
		return t2.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
}
