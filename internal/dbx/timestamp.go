package dbx

import (
	"fmt"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp returns a scanner that fills dst from a native time value or from
// the textual forms SQLite hands back for TIMESTAMP columns.
//
//	row.Scan(&c.ID, dbx.Timestamp(&c.CreatedAt))
func Timestamp(dst *time.Time) *TimestampScanner {
	return &TimestampScanner{dst: dst}
}

type TimestampScanner struct {
	dst *time.Time
}

func (s *TimestampScanner) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.dst = v
		return nil
	case nil:
		*s.dst = time.Time{}
		return nil
	case string:
		return s.parse(v)
	case []byte:
		return s.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
}

func (s *TimestampScanner) parse(v string) error {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", v)
}
