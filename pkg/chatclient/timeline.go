package chatclient

// Timeline merges a one-shot historical fetch with an unbounded stream of live
// delivery events into a single ordered, duplicate-free message list.
//
// The merge policy is fixed: the historical page (server order) forms the
// base, and live messages are appended after it in arrival order. Live events
// that arrive before the fetch resolves are buffered and re-appended behind
// the base once it lands. No re-sort by timestamp is ever performed.
//
// Timeline is not safe for concurrent use; the owning session serializes
// access through its event loop.
type Timeline struct {
	base          []Message
	live          []Message
	historyLoaded bool
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// ApplyLive appends a delivered message unless an existing entry already has
// the same (content, senderId) pair. Deduplicating on content+sender rather
// than a message id is deliberate: the delivered payload carries no stable
// client-visible id, so a fast double-send of identical text collapses. See
// the dedup note in DESIGN.md before "fixing" this.
func (t *Timeline) ApplyLive(m Message) bool {
	if t.contains(m) {
		return false
	}
	t.live = append(t.live, m)
	return true
}

// ApplyHistory replaces the base with the normalized, server-ordered history
// page. Live messages that arrived while the fetch was outstanding are kept
// and re-appended after the new base, minus any the page already contains.
func (t *Timeline) ApplyHistory(base []Message) {
	buffered := t.live
	t.base = base
	t.live = nil
	t.historyLoaded = true
	for _, m := range buffered {
		if !t.contains(m) {
			t.live = append(t.live, m)
		}
	}
}

// HistoryLoaded reports whether the one-shot historical fetch has been
// applied.
func (t *Timeline) HistoryLoaded() bool {
	return t.historyLoaded
}

// Messages returns the merged timeline: base first, then live appends.
func (t *Timeline) Messages() []Message {
	out := make([]Message, 0, len(t.base)+len(t.live))
	out = append(out, t.base...)
	out = append(out, t.live...)
	return out
}

func (t *Timeline) Len() int {
	return len(t.base) + len(t.live)
}

func (t *Timeline) contains(m Message) bool {
	for _, e := range t.base {
		if e.Content == m.Content && e.SenderID == m.SenderID {
			return true
		}
	}
	for _, e := range t.live {
		if e.Content == m.Content && e.SenderID == m.SenderID {
			return true
		}
	}
	return false
}
