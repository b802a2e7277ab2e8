// Package schedule turns the human-readable dates and times used by meetups and
// team fixtures into concrete points in time.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	timePattern    = regexp.MustCompile(`(?i)^(\d{1,2}):(\d{2})\s*(AM|PM)$`)
	weekdayPattern = regexp.MustCompile(`^([A-Za-z]{3,})\s+(.+)$`)
)

// weekdays is indexed by time.Weekday.
var weekdays = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// lookupWeekday accepts a full weekday name or an abbreviation of at least
// three letters, case-insensitively.
func lookupWeekday(word string) (time.Weekday, bool) {
	word = strings.ToLower(word)
	for i, name := range weekdays {
		if strings.HasPrefix(name, word) {
			return time.Weekday(i), true
		}
	}
	return 0, false
}

// ParseTime parses a 12-hour clock string such as "7:30 PM" into a 24-hour
// hour and minute. ok is false for anything that is not H:MM AM|PM with an
// hour in 1-12 and a minute in 00-59.
func ParseTime(s string) (hour, minute int, ok bool) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, 0, false
	}

	hour12, err := strconv.Atoi(m[1])
	if err != nil || hour12 < 1 || hour12 > 12 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(m[2])
	if err != nil || minute > 59 {
		return 0, 0, false
	}

	hour = hour12 % 12
	if strings.EqualFold(m[3], "PM") {
		hour += 12
	}
	return hour, minute, true
}

// MeetupStart combines a "YYYY-MM-DD" date key and a clock string into a
// time in loc.
func MeetupStart(dateKey, clock string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(strings.TrimSpace(dateKey), "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}

	var ymd [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, false
		}
		ymd[i] = n
	}
	year, month, day := ymd[0], ymd[1], ymd[2]
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	hour, minute, ok := ParseTime(clock)
	if !ok {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, loc)
	// time.Date normalizes Feb 30 into March; reject that instead.
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}

// NextGameStart resolves "Wed 6:00 PM" to the next occurrence of that weekday
// and time strictly after now, in now's location.
func NextGameStart(weekdayAndTime string, now time.Time) (time.Time, bool) {
	m := weekdayPattern.FindStringSubmatch(strings.TrimSpace(weekdayAndTime))
	if m == nil {
		return time.Time{}, false
	}

	target, ok := lookupWeekday(m[1])
	if !ok {
		return time.Time{}, false
	}
	hour, minute, ok := ParseTime(m[2])
	if !ok {
		return time.Time{}, false
	}

	offset := (int(target) - int(now.Weekday()) + 7) % 7
	y, mo, d := now.Date()
	candidate := time.Date(y, mo, d+offset, hour, minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(y, mo, d+offset+7, hour, minute, 0, 0, now.Location())
	}
	return candidate, true
}
