package intent

import (
	"regexp"
	"strings"
)

// ClassifyPriority infers priority from keywords. High-priority words win
// over low-priority phrases when both appear.
func ClassifyPriority(utterance string) Priority {
	lower := strings.ToLower(utterance)
	for _, kw := range []string{"urgent", "important", "critical"} {
		if strings.Contains(lower, kw) {
			return PriorityHigh
		}
	}
	for _, kw := range []string{"low priority", "when possible"} {
		if strings.Contains(lower, kw) {
			return PriorityLow
		}
	}
	return PriorityMedium
}

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:(?:at|by|around) )?\b\d{1,2}:?(?:\d{2})?\s?(?:am|pm)\b`),
	regexp.MustCompile(`(?i)(?:(?:at|by|around) )?\b\d{1,2}:\d{2}\b`),
	regexp.MustCompile(`(?i)\b(?:tomorrow|today|tonight|morning|afternoon|evening)\b`),
	regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
	regexp.MustCompile(`(?i)\bin \d+ (?:minutes?|hours?|days?)\b`),
}

// ScanTime returns the first time-looking fragment in the utterance, or ""
// when there is none.
func ScanTime(utterance string) string {
	for _, re := range timePatterns {
		if m := re.FindString(utterance); m != "" {
			return m
		}
	}
	return ""
}
