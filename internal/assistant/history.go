package assistant

import "time"

// HistoryLimit is the number of conversation entries kept per session.
const HistoryLimit = 20

// Role identifies who said a history entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is one turn of the conversation.
type Entry struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is a fixed-capacity ring of entries. When full, appending evicts
// the oldest entry. The zero value holds HistoryLimit entries.
type History struct {
	buf   []Entry
	start int
	size  int
}

// Append adds e as the newest entry.
func (h *History) Append(e Entry) {
	if h.buf == nil {
		h.buf = make([]Entry, HistoryLimit)
	}

	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = e
		h.size++
		return
	}

	h.buf[h.start] = e
	h.start = (h.start + 1) % len(h.buf)
}

// All returns a copy of the entries, oldest first.
func (h *History) All() []Entry {
	out := make([]Entry, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int { return h.size }
