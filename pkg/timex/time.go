// Package timex provides an RFC3339 UTC time type shared by the database
// layer and the remote wire format.
package timex

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Layout is the canonical wire format for timestamps. Fractional seconds are
// kept so that two writes inside the same second still order correctly.
const Layout = "2006-01-02T15:04:05.999999999Z07:00"

// Time is a time.Time that marshals as RFC3339 UTC everywhere: JSON, YAML,
// and the gorm column it is stored in.
type Time time.Time

// Now returns the current time truncated to UTC.
func Now() Time {
	return Time(time.Now().UTC())
}

// Parse parses an RFC3339 timestamp.
func Parse(s string) (Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Time{}, err
	}
	return Time(t.UTC()), nil
}

func (t Time) Std() time.Time { return time.Time(t) }

func (t Time) IsZero() bool { return time.Time(t).IsZero() }

func (t Time) Unix() int64 { return time.Time(t).Unix() }

func (t Time) UnixMilli() int64 { return time.Time(t).UnixMilli() }

func (t Time) UnixMicro() int64 { return time.Time(t).UnixMicro() }

func (t Time) UnixNano() int64 { return time.Time(t).UnixNano() }

// After reports whether t is strictly later than u.
func (t Time) After(u Time) bool {
	return time.Time(t).After(time.Time(u))
}

func (t Time) String() string {
	return time.Time(t).UTC().Format(Layout)
}

// MarshalJSON renders the timestamp as an RFC3339 UTC string.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON accepts RFC3339 with or without fractional seconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("timex: invalid timestamp %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer for gorm.
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t).UTC(), nil
}

// Scan implements sql.Scanner for gorm.
func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(value.UTC())
	case string:
		parsed, err := Parse(value)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := Parse(string(value))
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("timex: cannot scan %T into timex.Time", v)
	}
	return nil
}
