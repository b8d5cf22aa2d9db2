package chatclient

import (
	"encoding/json"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantSender    string
		wantFirstName string
		wantLastName  string
		wantZeroTime  bool
	}{
		{
			name:          "flat sender id",
			raw:           `{"senderId":"u1","firstName":"Ada","lastName":"Lovelace","content":"hi","createdAt":"2024-01-01T10:00:00Z"}`,
			wantSender:    "u1",
			wantFirstName: "Ada",
			wantLastName:  "Lovelace",
		},
		{
			name:          "populated author object",
			raw:           `{"senderId":{"_id":"u2","firstName":"Grace","lastName":"Hopper"},"content":"yo","createdAt":"2024-01-01T10:00:00Z"}`,
			wantSender:    "u2",
			wantFirstName: "Grace",
			wantLastName:  "Hopper",
		},
		{
			name:          "nested names win over flat ones",
			raw:           `{"senderId":{"_id":"u2","firstName":"Grace","lastName":"Hopper"},"firstName":"stale","lastName":"stale","content":"yo","createdAt":"2024-01-01T10:00:00Z"}`,
			wantSender:    "u2",
			wantFirstName: "Grace",
			wantLastName:  "Hopper",
		},
		{
			name:         "missing sender degrades to empty fields",
			raw:          `{"content":"orphan","createdAt":"2024-01-01T10:00:00Z"}`,
			wantSender:   "",
			wantZeroTime: false,
		},
		{
			name:         "malformed sender does not fail normalization",
			raw:          `{"senderId":42,"content":"odd","createdAt":"2024-01-01T10:00:00Z"}`,
			wantSender:   "",
			wantZeroTime: false,
		},
		{
			name:         "invalid timestamp yields zero time",
			raw:          `{"senderId":"u1","content":"hi","createdAt":"not-a-date"}`,
			wantSender:   "u1",
			wantZeroTime: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w WireMessage
			if err := json.Unmarshal([]byte(tt.raw), &w); err != nil {
				t.Fatalf("unmarshal fixture: %v", err)
			}

			m := Normalize(w)

			if m.SenderID != tt.wantSender {
				t.Errorf("SenderID = %q, want %q", m.SenderID, tt.wantSender)
			}
			if tt.wantFirstName != "" && m.SenderFirstName != tt.wantFirstName {
				t.Errorf("SenderFirstName = %q, want %q", m.SenderFirstName, tt.wantFirstName)
			}
			if tt.wantLastName != "" && m.SenderLastName != tt.wantLastName {
				t.Errorf("SenderLastName = %q, want %q", m.SenderLastName, tt.wantLastName)
			}
			if m.CreatedAt.IsZero() != tt.wantZeroTime {
				t.Errorf("CreatedAt.IsZero() = %v, want %v", m.CreatedAt.IsZero(), tt.wantZeroTime)
			}
		})
	}
}

func TestNormalizeAllKeepsServerOrder(t *testing.T) {
	wire := []WireMessage{
		{SenderID: json.RawMessage(`"a"`), Content: "one"},
		{SenderID: json.RawMessage(`"b"`), Content: "two"},
		{SenderID: json.RawMessage(`"a"`), Content: "three"},
	}

	got := NormalizeAll(wire)

	assertOrder(t, got, []string{"a:one", "b:two", "a:three"})
}
