package chatclient

import "time"

// UnknownDateLabel is the bucket for messages whose timestamp could not be
// parsed.
const UnknownDateLabel = "Unknown"

// DateGroup is one calendar-day bucket of a timeline.
type DateGroup struct {
	Label    string
	Messages []Message
}

// GroupByDate buckets an ordered timeline by calendar day relative to now.
// Buckets are labelled "Today", "Yesterday" or a short date, and are emitted
// in first-encountered order so the overall chronology is preserved. This is
// a derived view: it holds no state and is recomputed on every change.
func GroupByDate(msgs []Message, now time.Time) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int)

	for _, m := range msgs {
		label := dateLabel(m.CreatedAt, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, DateGroup{Label: label})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}

	return groups
}

func dateLabel(ts, now time.Time) string {
	if ts.IsZero() {
		return UnknownDateLabel
	}
	if sameDay(ts, now) {
		return "Today"
	}
	if sameDay(ts, now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return ts.Format("1/2/2006")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
