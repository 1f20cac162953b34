package intent

import "regexp"

// Matcher pairs a pattern with the intent it produces. Capture group 1 holds
// the content (or event title). TimeGroup names the capture group holding the
// time fragment; zero means the fragment is scanned from the whole utterance.
type Matcher struct {
	Kind      Kind
	Pattern   *regexp.Regexp
	TimeGroup int
}

const (
	reminderEnd = `(?:\s+(?:at|by|around|every|daily|weekly|monthly|tomorrow|tonight|today)\b|\s+in \d+\b|$)`
	taskEnd     = `(?:\s+(?:today|tomorrow|tonight|this week)\b|$)`
	moodWords   = `(happy|great|good|sad|down|upset|stressed|overwhelmed|anxious|tired|exhausted|sleepy|okay|ok|fine|neutral)`
)

// DefaultMatchers returns the built-in cascade. Order matters: reminder
// phrasings are tried before task phrasings, then scheduling. The first
// matching pattern wins; anything else is general chat.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Kind: KindCreateReminder, Pattern: regexp.MustCompile(`(?i)remind me to (.+?)` + reminderEnd)},
		{Kind: KindCreateReminder, Pattern: regexp.MustCompile(`(?i)remind me (?:about|of) (.+?)` + reminderEnd)},
		{Kind: KindCreateReminder, Pattern: regexp.MustCompile(`(?i)set (?:a )?reminder (?:to )?(.+?)` + reminderEnd)},
		{Kind: KindCreateReminder, Pattern: regexp.MustCompile(`(?i)don'?t let me forget (?:to )?(.+?)` + reminderEnd)},

		{Kind: KindCreateTask, Pattern: regexp.MustCompile(`(?i)add (.+?) to (?:my )?(?:todo|task|to-do)s?(?: list)?\b`)},
		{Kind: KindCreateTask, Pattern: regexp.MustCompile(`(?i)create (?:a )?(?:new )?task (?:to )?(.+?)` + taskEnd)},
		{Kind: KindCreateTask, Pattern: regexp.MustCompile(`(?i)i need to (.+?)` + taskEnd)},

		{Kind: KindScheduleEvent, Pattern: regexp.MustCompile(`(?i)schedule (?:an? )?(.+?) (?:for|at|on) (.+)`), TimeGroup: 2},
		{Kind: KindScheduleEvent, Pattern: regexp.MustCompile(`(?i)book (?:an? )?(.+?) (?:for|at|on) (.+)`), TimeGroup: 2},
		{Kind: KindScheduleEvent, Pattern: regexp.MustCompile(`(?i)add (.+?) to (?:my )?calendar`)},
	}
}

// MoodMatchers recognise explicit mood reports ("I'm feeling tired"). They
// are not in DefaultMatchers; append them to opt in.
func MoodMatchers() []Matcher {
	return []Matcher{
		{Kind: KindUpdateMood, Pattern: regexp.MustCompile(`(?i)\bi(?:'m| am) (?:feeling )?(?:so |really |very |a bit )?` + moodWords + `\b`)},
		{Kind: KindUpdateMood, Pattern: regexp.MustCompile(`(?i)\bi feel (?:so |really |very |a bit )?` + moodWords + `\b`)},
		{Kind: KindUpdateMood, Pattern: regexp.MustCompile(`(?i)\bmy mood is ` + moodWords + `\b`)},
	}
}

var moodSynonyms = map[string]Mood{
	"happy":       MoodHappy,
	"great":       MoodHappy,
	"good":        MoodHappy,
	"sad":         MoodSad,
	"down":        MoodSad,
	"upset":       MoodSad,
	"stressed":    MoodStressed,
	"overwhelmed": MoodStressed,
	"anxious":     MoodStressed,
	"tired":       MoodTired,
	"exhausted":   MoodTired,
	"sleepy":      MoodTired,
	"okay":        MoodNeutral,
	"ok":          MoodNeutral,
	"fine":        MoodNeutral,
	"neutral":     MoodNeutral,
}
