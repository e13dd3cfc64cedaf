package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateResult is the explicit outcome of parsing a completion timestamp.
// Invalid results sort after every valid date.
type DateResult struct {
	Valid bool
	Year  int
	Month int
	Day   int
}

// completedOnLayouts covers the formats Service Fusion exports have been seen
// to emit, with and without a time component.
var completedOnLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"01/02/06",
	"1-2-2006",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006/01/02",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04 PM",
	"1/2/2006 15:04",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseCompletedOn parses a raw report cell into a DateResult. Excel serial
// numbers and the common textual layouts are accepted; anything else is an
// invalid result, never an error.
func ParseCompletedOn(raw string) DateResult {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DateResult{}
	}

	// Numeric serial dates appear when the export loses its cell formatting.
	// The range guard keeps plain job counts from being read as dates.
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial >= 20000 && serial <= 80000 {
			if parsed, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return fromTime(parsed)
			}
		}
		return DateResult{}
	}

	for _, layout := range completedOnLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return fromTime(parsed)
		}
	}

	return DateResult{}
}

func fromTime(t time.Time) DateResult {
	return DateResult{Valid: true, Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// SortKey maps the result onto a comparable triple; invalid dates map onto a
// maximal key so they order last.
func (d DateResult) SortKey() (int, int, int) {
	if !d.Valid {
		return 9999, 99, 99
	}
	return d.Year, d.Month, d.Day
}

// Less compares two results by (year, month, day).
func (d DateResult) Less(other DateResult) bool {
	y1, m1, d1 := d.SortKey()
	y2, m2, d2 := other.SortKey()
	if y1 != y2 {
		return y1 < y2
	}
	if m1 != m2 {
		return m1 < m2
	}
	return d1 < d2
}

// Time materialises the date-only value. Only meaningful when Valid.
func (d DateResult) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}
