package chatclient

import (
	"testing"
	"time"
)

func msg(sender, content string, ts string) Message {
	created, _ := time.Parse(time.RFC3339, ts)
	return Message{SenderID: sender, Content: content, CreatedAt: created}
}

func contents(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.SenderID+":"+m.Content)
	}
	return out
}

func assertOrder(t *testing.T, got []Message, want []string) {
	t.Helper()
	gotKeys := contents(got)
	if len(gotKeys) != len(want) {
		t.Fatalf("timeline = %v, want %v", gotKeys, want)
	}
	for i := range want {
		if gotKeys[i] != want[i] {
			t.Fatalf("timeline[%d] = %q, want %q (full: %v)", i, gotKeys[i], want[i], gotKeys)
		}
	}
}

func TestApplyLiveDedup(t *testing.T) {
	tests := []struct {
		name string
		live []Message
		want []string
	}{
		{
			name: "distinct messages append in arrival order",
			live: []Message{msg("A", "hi", "2024-01-01T10:00:00Z"), msg("B", "yo", "2024-01-01T10:00:01Z")},
			want: []string{"A:hi", "B:yo"},
		},
		{
			name: "identical content and sender collapses",
			live: []Message{msg("A", "hi", "2024-01-01T10:00:00Z"), msg("A", "hi", "2024-01-01T10:00:05Z")},
			want: []string{"A:hi"},
		},
		{
			name: "same content from different senders is kept",
			live: []Message{msg("A", "hi", "2024-01-01T10:00:00Z"), msg("B", "hi", "2024-01-01T10:00:01Z")},
			want: []string{"A:hi", "B:hi"},
		},
		{
			name: "same sender different content is kept",
			live: []Message{msg("A", "hi", "2024-01-01T10:00:00Z"), msg("A", "hi!", "2024-01-01T10:00:01Z")},
			want: []string{"A:hi", "A:hi!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTimeline()
			for _, m := range tt.live {
				tl.ApplyLive(m)
			}
			assertOrder(t, tl.Messages(), tt.want)
		})
	}
}

func TestLiveEchoAfterHistoryIsDeduplicated(t *testing.T) {
	// The transport may redeliver a message the history page already holds;
	// the timeline must still show it once.
	tl := NewTimeline()
	tl.ApplyHistory([]Message{msg("A", "hi", "2024-01-01T10:00:00Z")})

	applied := tl.ApplyLive(msg("A", "hi", "2024-01-01T10:00:01Z"))

	if applied {
		t.Error("ApplyLive accepted a duplicate of a history entry")
	}
	if tl.Len() != 1 {
		t.Fatalf("timeline has %d messages, want 1", tl.Len())
	}
}

func TestHistoryReplacesBaseAndReappendsBufferedLive(t *testing.T) {
	// A live event arriving before the fetch resolves is buffered, then
	// re-appended after the history page lands.
	tl := NewTimeline()
	tl.ApplyLive(msg("B", "yo", "2024-01-01T10:00:02Z"))
	tl.ApplyHistory([]Message{msg("A", "hey", "2024-01-01T10:00:00Z")})

	assertOrder(t, tl.Messages(), []string{"A:hey", "B:yo"})
	if !tl.HistoryLoaded() {
		t.Error("HistoryLoaded = false after ApplyHistory")
	}
}

func TestHistoryDropsBufferedDuplicates(t *testing.T) {
	tl := NewTimeline()
	tl.ApplyLive(msg("A", "hey", "2024-01-01T10:00:00Z"))
	tl.ApplyLive(msg("B", "yo", "2024-01-01T10:00:01Z"))
	tl.ApplyHistory([]Message{msg("A", "hey", "2024-01-01T10:00:00Z")})

	assertOrder(t, tl.Messages(), []string{"A:hey", "B:yo"})
}

func TestHistoryPrecedesAllLiveAppends(t *testing.T) {
	tl := NewTimeline()
	tl.ApplyHistory([]Message{
		msg("A", "one", "2024-01-01T10:00:00Z"),
		msg("B", "two", "2024-01-01T10:00:01Z"),
	})
	tl.ApplyLive(msg("A", "three", "2024-01-01T10:00:02Z"))
	tl.ApplyLive(msg("B", "four", "2024-01-01T10:00:03Z"))

	assertOrder(t, tl.Messages(), []string{"A:one", "B:two", "A:three", "B:four"})
}
