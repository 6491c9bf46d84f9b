// Package datetime provides the date layouts shared by configuration, rate
// sources and the listings database.
package datetime

import (
	"fmt"
	"time"
)

const (
	// DateLayout is used for rates.lastUpdated and exchange rate effective dates.
	DateLayout = "2006-01-02"

	// TimestampLayout is how listing scrape times are stored. Values sort lexically.
	TimestampLayout = "2006-01-02T15:04:05.000000"
)

// ParseDate parses a DateLayout date.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected date in YYYY-MM-DD format, got %q", date)
	}
	return t, nil
}

// FormatTimestamp renders t in TimestampLayout, in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
