package chatclient

import (
	"testing"
	"time"
)

func TestGroupByDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name       string
		msgs       []Message
		wantLabels []string
	}{
		{
			name:       "empty timeline",
			msgs:       nil,
			wantLabels: nil,
		},
		{
			name: "today and yesterday",
			msgs: []Message{
				msg("A", "old", "2024-06-14T09:00:00Z"),
				msg("B", "new", "2024-06-15T10:00:00Z"),
			},
			wantLabels: []string{"Yesterday", "Today"},
		},
		{
			name: "older days use short dates",
			msgs: []Message{
				msg("A", "ancient", "2024-01-02T09:00:00Z"),
				msg("A", "recent", "2024-06-15T10:00:00Z"),
			},
			wantLabels: []string{"1/2/2024", "Today"},
		},
		{
			name: "buckets keep first-encountered order",
			msgs: []Message{
				msg("A", "one", "2024-06-13T09:00:00Z"),
				msg("B", "two", "2024-06-14T09:00:00Z"),
				msg("A", "three", "2024-06-13T12:00:00Z"),
			},
			wantLabels: []string{"6/13/2024", "Yesterday"},
		},
		{
			name: "malformed timestamp lands in the unknown bucket",
			msgs: []Message{
				{SenderID: "A", Content: "no date"},
				msg("B", "dated", "2024-06-15T10:00:00Z"),
			},
			wantLabels: []string{UnknownDateLabel, "Today"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := GroupByDate(tt.msgs, now)

			if len(groups) != len(tt.wantLabels) {
				t.Fatalf("got %d groups, want %d", len(groups), len(tt.wantLabels))
			}
			total := 0
			for i, g := range groups {
				if g.Label != tt.wantLabels[i] {
					t.Errorf("group[%d].Label = %q, want %q", i, g.Label, tt.wantLabels[i])
				}
				total += len(g.Messages)
			}
			if total != len(tt.msgs) {
				t.Errorf("groups hold %d messages, want %d", total, len(tt.msgs))
			}
		})
	}
}

func TestGroupByDatePreservesInGroupOrder(t *testing.T) {
	now := time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)
	msgs := []Message{
		msg("A", "first", "2024-06-15T09:00:00Z"),
		msg("B", "second", "2024-06-15T10:00:00Z"),
		msg("A", "third", "2024-06-15T11:00:00Z"),
	}

	groups := GroupByDate(msgs, now)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	assertOrder(t, groups[0].Messages, []string{"A:first", "B:second", "A:third"})
}
