package intent

import "strings"

// Extractor runs a Matcher cascade against utterances.
type Extractor struct {
	matchers []Matcher
}

// NewExtractor creates an Extractor over the given matchers. A nil slice
// selects DefaultMatchers.
func NewExtractor(matchers []Matcher) *Extractor {
	if matchers == nil {
		matchers = DefaultMatchers()
	}
	return &Extractor{matchers: matchers}
}

// Extract returns the intent of the first matcher that fires, or a general
// intent when none does. It has no side effects.
func (e *Extractor) Extract(utterance string) Intent {
	for _, m := range e.matchers {
		groups := m.Pattern.FindStringSubmatch(utterance)
		if len(groups) < 2 {
			continue
		}

		content := strings.TrimSpace(groups[1])
		if content == "" {
			continue
		}

		in := Intent{
			Kind:      m.Kind,
			Content:   content,
			Priority:  ClassifyPriority(utterance),
			Utterance: utterance,
		}

		if m.TimeGroup > 0 && m.TimeGroup < len(groups) {
			in.Time = strings.TrimSpace(groups[m.TimeGroup])
		}
		if in.Time == "" {
			in.Time = ScanTime(utterance)
		}

		switch m.Kind {
		case KindCreateReminder:
			in.Repeat = ClassifyRepeat(utterance)
		case KindUpdateMood:
			mood, ok := moodSynonyms[strings.ToLower(content)]
			if !ok {
				mood = ParseMood(content)
			}
			in.Content = string(mood)
			in.Time = ""
		}

		return in
	}

	return General(utterance)
}
