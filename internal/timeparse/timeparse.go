// Package timeparse turns the time fragments found in chat messages
// ("in 10 minutes", "tomorrow", "3 pm") into absolute instants.
package timeparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMinutes = 5
	defaultHours   = 1
	defaultHour    = 9
)

var (
	minutesRe = regexp.MustCompile(`(?i)\bminutes?\b`)
	hoursRe   = regexp.MustCompile(`(?i)\bhours?\b`)
	daysRe    = regexp.MustCompile(`(?i)\b(\d+)\s*days?\b`)
	weeksRe   = regexp.MustCompile(`(?i)\b(\d+)\s*weeks?\b`)
	numberRe  = regexp.MustCompile(`\d+`)
	clockRe   = regexp.MustCompile(`(?i)\b(\d{1,2}):?(\d{2})?\s?(am|pm)?\b`)
	weekdayRe = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	partRe    = regexp.MustCompile(`(?i)\b(tonight|morning|afternoon|evening)\b`)
	pmPartRe  = regexp.MustCompile(`(?i)\b(tonight|afternoon|evening)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var dayParts = map[string]int{
	"tonight":   20,
	"morning":   9,
	"afternoon": 15,
	"evening":   19,
}

// Resolve converts a time fragment into an absolute instant relative to now.
// Every input resolves to some instant: unparsable numbers take defaults and
// unrecognised fragments land one minute after now. Calendar arithmetic uses
// now's location.
func Resolve(fragment string, now time.Time) time.Time {
	lower := strings.ToLower(strings.TrimSpace(fragment))

	if minutesRe.MatchString(lower) {
		return now.Add(time.Duration(firstNumber(lower, defaultMinutes)) * time.Minute)
	}

	if hoursRe.MatchString(lower) {
		return now.Add(time.Duration(firstNumber(lower, defaultHours)) * time.Hour)
	}

	if strings.Contains(lower, "tomorrow") {
		h, m, ok := clockTime(lower)
		if !ok {
			h, m = defaultHour, 0
		}
		y, mo, d := now.Date()
		return time.Date(y, mo, d+1, h, m, 0, 0, now.Location())
	}

	// "in 3 days" and "friday at 2pm" carry digits the clock rule would
	// otherwise claim.
	if m := daysRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, n)
	}

	if m := weeksRe.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, 7*n)
	}

	if m := weekdayRe.FindStringSubmatch(lower); m != nil {
		h, mm, ok := clockTime(lower)
		if !ok {
			h, mm = defaultHour, 0
		}
		return nextWeekday(now, weekdays[m[1]], h, mm)
	}

	if h, m, ok := clockTime(lower); ok {
		return nextOccurrence(now, h, m)
	}

	if m := partRe.FindStringSubmatch(lower); m != nil {
		return nextOccurrence(now, dayParts[m[1]], 0)
	}

	return now.Add(time.Minute)
}

// clockTime reads the clock time in s. A bare hour below 12 next to
// "tonight", "afternoon" or "evening" is taken as pm.
func clockTime(s string) (hour, minute int, ok bool) {
	hour, minute, meridiem, ok := clock(s)
	if ok && !meridiem && hour < 12 && pmPartRe.MatchString(s) {
		hour += 12
	}
	return hour, minute, ok
}

// clock extracts an hour and minute from an H[:MM] [am|pm] expression.
// meridiem reports whether am/pm was given. Values outside a 24-hour clock
// are rejected.
func clock(s string) (hour, minute int, meridiem, ok bool) {
	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false, false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false, false
	}
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}

	meridiem = m[3] != ""
	switch strings.ToLower(m[3]) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}

	if hour > 23 || minute > 59 {
		return 0, 0, false, false
	}
	return hour, minute, meridiem, true
}

// nextOccurrence returns today at hour:minute, or the same clock time on the
// following calendar day when that moment is not after now.
func nextOccurrence(now time.Time, hour, minute int) time.Time {
	y, mo, d := now.Date()
	t := time.Date(y, mo, d, hour, minute, 0, 0, now.Location())
	if !t.After(now) {
		t = time.Date(y, mo, d+1, hour, minute, 0, 0, now.Location())
	}
	return t
}

// nextWeekday returns the next target weekday strictly after today.
func nextWeekday(now time.Time, target time.Weekday, hour, minute int) time.Time {
	days := (int(target) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	y, mo, d := now.Date()
	return time.Date(y, mo, d+days, hour, minute, 0, 0, now.Location())
}

func firstNumber(s string, fallback int) int {
	n, err := strconv.Atoi(numberRe.FindString(s))
	if err != nil {
		return fallback
	}
	return n
}
