package booking

import (
	"strconv"
	"strings"
	"time"
)

// Layouts for the canonical forms.
const (
	DisplayDateLayout = "01/02/2006"
	ISOLayout         = "2006-01-02T15:04:05"
)

// Normalize parses a caller-supplied date and time into an instant and
// the MM/DD/YYYY display date.
//
// A date containing "-" is read as YYYY-MM-DD, anything else as M/D/YYYY.
// Time is HH:MM on a 24-hour clock; leading zeros are optional.
// The instant carries no zone information and is returned in UTC.
func Normalize(date, clock string) (time.Time, string, error) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	var year, month, day int
	var err error
	if strings.Contains(date, "-") {
		year, month, day, err = parseISODate(date)
	} else {
		month, day, year, err = parseSlashDate(date)
	}
	if err != nil {
		return time.Time{}, "", err
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, "", err
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject that.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, "", &ParseError{Field: "date", Value: date, Reason: "not a calendar day"}
	}

	return t, t.Format(DisplayDateLayout), nil
}

func parseISODate(s string) (year, month, day int, err error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "want YYYY-MM-DD"}
	}
	year, ok1 := number(parts[0], 4)
	month, ok2 := number(parts[1], 2)
	day, ok3 := number(parts[2], 2)
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "want YYYY-MM-DD"}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "month or day out of range"}
	}
	return year, month, day, nil
}

func parseSlashDate(s string) (month, day, year int, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "want M/D/YYYY"}
	}
	month, ok1 := number(parts[0], 2)
	day, ok2 := number(parts[1], 2)
	year, ok3 := number(parts[2], 4)
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "want M/D/YYYY"}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, &ParseError{Field: "date", Value: s, Reason: "month or day out of range"}
	}
	return month, day, year, nil
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, &ParseError{Field: "time", Value: s, Reason: "want HH:MM"}
	}
	hour, ok1 := number(parts[0], 2)
	minute, ok2 := number(parts[1], 2)
	if !ok1 || !ok2 {
		return 0, 0, &ParseError{Field: "time", Value: s, Reason: "want HH:MM"}
	}
	if hour > 23 || minute > 59 {
		return 0, 0, &ParseError{Field: "time", Value: s, Reason: "hour or minute out of range"}
	}
	return hour, minute, nil
}

// number parses 1..maxDigits ASCII digits.
func number(s string, maxDigits int) (int, bool) {
	if s == "" || len(s) > maxDigits {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
