package utils

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Today returns the current UTC calendar date.
func Today() datatypes.Date {
	return DateOf(time.Now().UTC())
}

// TodayKey returns today's UTC date as YYYY-MM-DD.
func TodayKey() string {
	return time.Now().UTC().Format(DateLayout)
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) datatypes.Date {
	year, month, day := t.Date()
	return datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateKey formats d as YYYY-MM-DD.
func DateKey(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a calendar date.
func ParseDate(value string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return datatypes.Date(t), nil
}

// SameDate reports whether two dates fall on the same calendar day.
func SameDate(a, b datatypes.Date) bool {
	return time.Time(a).Equal(time.Time(b))
}
