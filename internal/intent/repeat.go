package intent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Cadence is the unit a reminder repeats on.
type Cadence string

const (
	CadenceMinutes Cadence = "minutes"
	CadenceHours   Cadence = "hours"
	CadenceDaily   Cadence = "daily"
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// Repeat describes how often a reminder recurs. Interval is at least 1.
type Repeat struct {
	Cadence  Cadence `json:"type"`
	Interval int     `json:"interval"`
}

// String renders the repeat the way a person would say it.
func (r Repeat) String() string {
	if r.Interval <= 1 {
		switch r.Cadence {
		case CadenceMinutes:
			return "every minute"
		case CadenceHours:
			return "every hour"
		default:
			return string(r.Cadence)
		}
	}

	unit := map[Cadence]string{
		CadenceMinutes: "minutes",
		CadenceHours:   "hours",
		CadenceDaily:   "days",
		CadenceWeekly:  "weeks",
		CadenceMonthly: "months",
	}[r.Cadence]
	return fmt.Sprintf("every %d %s", r.Interval, unit)
}

var (
	dailyRe    = regexp.MustCompile(`(?i)\b(daily|every day)\b`)
	weeklyRe   = regexp.MustCompile(`(?i)\b(weekly|every week)\b`)
	monthlyRe  = regexp.MustCompile(`(?i)\b(monthly|every month)\b`)
	intervalRe = regexp.MustCompile(`(?i)\bevery (\d+) (minutes?|hours?|days?|weeks?)\b`)
)

// ClassifyRepeat detects recurrence keywords. It returns nil when the
// utterance does not ask for a repeating reminder.
func ClassifyRepeat(utterance string) *Repeat {
	switch {
	case dailyRe.MatchString(utterance):
		return &Repeat{Cadence: CadenceDaily, Interval: 1}
	case weeklyRe.MatchString(utterance):
		return &Repeat{Cadence: CadenceWeekly, Interval: 1}
	case monthlyRe.MatchString(utterance):
		return &Repeat{Cadence: CadenceMonthly, Interval: 1}
	}

	m := intervalRe.FindStringSubmatch(utterance)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return nil
	}

	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "minute"):
		return &Repeat{Cadence: CadenceMinutes, Interval: n}
	case strings.HasPrefix(unit, "hour"):
		return &Repeat{Cadence: CadenceHours, Interval: n}
	case strings.HasPrefix(unit, "day"):
		return &Repeat{Cadence: CadenceDaily, Interval: n}
	default:
		return &Repeat{Cadence: CadenceWeekly, Interval: n}
	}
}

// UnmarshalJSON accepts either the object form or a bare phrase such as
// "daily" or "every 2 hours", which is how generated replies tend to send it.
func (r *Repeat) UnmarshalJSON(b []byte) error {
	var phrase string
	if err := json.Unmarshal(b, &phrase); err == nil {
		parsed := ClassifyRepeat(phrase)
		if parsed == nil {
			return fmt.Errorf("unknown repeat %q", phrase)
		}
		*r = *parsed
		return nil
	}

	type plain Repeat
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	if p.Interval < 1 {
		p.Interval = 1
	}
	*r = Repeat(p)
	return nil
}
