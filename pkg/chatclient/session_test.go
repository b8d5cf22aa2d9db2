package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emittedFrame struct {
	event   string
	payload interface{}
}

type fakeTransport struct {
	mu      sync.Mutex
	events  chan Event
	emitted []emittedFrame
	closed  bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{events: make(chan Event, 16)}
}

func (t *fakeTransport) Connect(ctx context.Context) error { return nil }

func (t *fakeTransport) Emit(event string, payload interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.emitted = append(t.emitted, emittedFrame{event: event, payload: payload})
	return nil
}

func (t *fakeTransport) Events() <-chan Event { return t.events }

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.events)
	}
	return nil
}

func (t *fakeTransport) fire(kind EventKind, payload string) {
	t.events <- Event{Kind: kind, Payload: json.RawMessage(payload)}
}

func (t *fakeTransport) countEmitted(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, f := range t.emitted {
		if f.event == event {
			n++
		}
	}
	return n
}

func (t *fakeTransport) lastEmitted(event string) (emittedFrame, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.emitted) - 1; i >= 0; i-- {
		if t.emitted[i].event == event {
			return t.emitted[i], true
		}
	}
	return emittedFrame{}, false
}

type fakeHistory struct {
	msgs    []Message
	err     error
	release chan struct{} // when non-nil, the fetch blocks until released
}

func (f *fakeHistory) FetchHistory(ctx context.Context, targetUserID string) ([]Message, error) {
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.msgs, f.err
}

func newTestSession(t *testing.T, transport *fakeTransport, history *fakeHistory) *Session {
	t.Helper()
	s, err := NewSession(SessionConfig{
		Identity:     Identity{UserID: "me", FirstName: "Mia", LastName: "Dev"},
		TargetUserID: "peer",
		Transport:    transport,
		History:      history,
		TypingWindow: 40 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	assert.Eventually(t, cond, time.Second, 5*time.Millisecond, msg)
}

func TestNewSessionRequiresIdentityAndTarget(t *testing.T) {
	_, err := NewSession(SessionConfig{
		TargetUserID: "peer",
		Transport:    newFakeTransport(),
		History:      &fakeHistory{},
	})
	assert.Error(t, err, "missing user id must be rejected")

	_, err = NewSession(SessionConfig{
		Identity:  Identity{UserID: "me"},
		Transport: newFakeTransport(),
		History:   &fakeHistory{},
	})
	assert.Error(t, err, "missing target id must be rejected")
}

func TestJoinEmittedOncePerConnection(t *testing.T) {
	transport := newFakeTransport()
	newTestSession(t, transport, &fakeHistory{})

	transport.fire(EventConnected, "")
	transport.fire(EventConnected, "")

	waitFor(t, func() bool { return transport.countEmitted(EmitJoinChat) >= 1 }, "join never emitted")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, transport.countEmitted(EmitJoinChat), "double connect-ready must not double the join")

	frame, ok := transport.lastEmitted(EmitJoinChat)
	require.True(t, ok)
	join := frame.payload.(JoinChatPayload)
	assert.Equal(t, "me", join.UserID)
	assert.Equal(t, "peer", join.TargetUserID)
	assert.Equal(t, "Mia", join.FirstName)
}

func TestRejoinAfterReconnect(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})

	transport.fire(EventConnected, "")
	waitFor(t, func() bool { return transport.countEmitted(EmitJoinChat) == 1 }, "initial join missing")

	transport.fire(EventDisconnected, "")
	waitFor(t, func() bool { return !s.Connected() }, "disconnect not observed")

	transport.fire(EventConnected, "")
	waitFor(t, func() bool { return transport.countEmitted(EmitJoinChat) == 2 }, "reconnect must re-join the room")
}

func TestSendWhileDisconnected(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})

	err := s.Send("hello")

	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, 0, transport.countEmitted(EmitSendMessage))
	assert.Empty(t, s.Messages(), "a guarded send must not append locally")
}

func TestSendValidation(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")

	assert.ErrorIs(t, s.Send("   "), ErrEmptyMessage)
	assert.ErrorIs(t, s.Send(strings.Repeat("x", MaxMessageLen+1)), ErrMessageTooLong)
	assert.Equal(t, 0, transport.countEmitted(EmitSendMessage))
}

func TestSendEmitsTrimmedContent(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")

	require.NoError(t, s.Send("  hi there  "))

	frame, ok := transport.lastEmitted(EmitSendMessage)
	require.True(t, ok)
	send := frame.payload.(SendMessagePayload)
	assert.Equal(t, "hi there", send.Content)
	assert.Equal(t, "peer", send.TargetUserID)
	assert.Empty(t, s.Messages(), "no optimistic local entry")
}

func TestLiveEchoOfHistoryIsDeduplicated(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{msgs: []Message{msg("A", "hi", "2024-01-01T10:00:00Z")}}
	s := newTestSession(t, transport, history)
	transport.fire(EventConnected, "")
	waitFor(t, s.HistoryLoaded, "history never applied")

	transport.fire(EventMessage, `{"senderId":"A","content":"hi","createdAt":"2024-01-01T10:00:01Z"}`)

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, s.Messages(), 1, "redelivered message must not duplicate")
}

func TestLiveBeforeHistoryIsReappendedAfterBase(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{
		msgs:    []Message{msg("A", "hey", "2024-01-01T10:00:00Z")},
		release: make(chan struct{}),
	}
	s := newTestSession(t, transport, history)
	transport.fire(EventConnected, "")

	transport.fire(EventMessage, `{"senderId":"B","content":"yo","createdAt":"2024-01-01T10:00:02Z"}`)
	waitFor(t, func() bool { return len(s.Messages()) == 1 }, "early live event not buffered")

	close(history.release)
	waitFor(t, s.HistoryLoaded, "history never applied")

	assertOrder(t, s.Messages(), []string{"A:hey", "B:yo"})
}

func TestStaleFetchIsNeverAppliedAfterClose(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{
		msgs:    []Message{msg("A", "stale", "2024-01-01T10:00:00Z")},
		release: make(chan struct{}),
	}
	s := newTestSession(t, transport, history)
	transport.fire(EventConnected, "")

	require.NoError(t, s.Close())
	close(history.release)

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, s.Messages(), "a fetch resolving after teardown must be discarded")
	assert.False(t, s.HistoryLoaded())
}

func TestMalformedLivePayloadIsIgnored(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.HistoryLoaded, "history never applied")

	transport.fire(EventMessage, `{not json`)
	transport.fire(EventMessage, `{"senderId":"B","content":"fine","createdAt":"2024-01-01T10:00:00Z"}`)

	waitFor(t, func() bool { return len(s.Messages()) == 1 }, "valid message after a bad one was lost")
}

func TestHistoryFailureKeepsExistingTimeline(t *testing.T) {
	transport := newFakeTransport()
	history := &fakeHistory{err: errors.New("boom"), release: make(chan struct{})}
	s := newTestSession(t, transport, history)
	transport.fire(EventConnected, "")

	transport.fire(EventMessage, `{"senderId":"B","content":"still here","createdAt":"2024-01-01T10:00:00Z"}`)
	waitFor(t, func() bool { return len(s.Messages()) == 1 }, "live delivery lost")

	close(history.release)
	time.Sleep(30 * time.Millisecond)

	assertOrder(t, s.Messages(), []string{"B:still here"})
	assert.False(t, s.HistoryLoaded(), "a failed fetch must not count as loaded")
}

func TestTypingDroppedWhileDisconnected(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})

	s.Typing()
	assert.Equal(t, 0, transport.countEmitted(EmitTyping))

	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")
	s.Typing()
	assert.Equal(t, 1, transport.countEmitted(EmitTyping))
}

func TestPeerTypingAutoClears(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")

	transport.fire(EventTyping, `{"userId":"peer","targetUserId":"me"}`)
	waitFor(t, s.PeerTyping, "peer typing flag never set")
	waitFor(t, func() bool { return !s.PeerTyping() }, "peer typing flag never cleared")
}

func TestOwnTypingEchoIsIgnored(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")

	transport.fire(EventTyping, `{"userId":"me","targetUserId":"peer"}`)
	time.Sleep(30 * time.Millisecond)
	assert.False(t, s.PeerTyping())
}

func TestJoinRejectionMarksTargetUnavailable(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")

	transport.fire(EventJoinRejected, `{"targetUserId":"peer","reason":"conversation not available"}`)

	waitFor(t, s.TargetUnavailable, "refusal never surfaced")
}

func TestJoinRejectionForAnotherTargetIsIgnored(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	waitFor(t, s.Connected, "never connected")

	transport.fire(EventJoinRejected, `{"targetUserId":"someone-else","reason":"conversation not available"}`)

	time.Sleep(30 * time.Millisecond)
	assert.False(t, s.TargetUnavailable(), "a stale refusal must not mark this conversation")
}

func TestReconnectClearsTargetUnavailable(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")
	transport.fire(EventJoinRejected, `{"targetUserId":"peer","reason":"conversation not available"}`)
	waitFor(t, s.TargetUnavailable, "refusal never surfaced")

	transport.fire(EventDisconnected, "")
	transport.fire(EventConnected, "")

	waitFor(t, func() bool { return !s.TargetUnavailable() }, "reconnect must retry the join")
	waitFor(t, func() bool { return transport.countEmitted(EmitJoinChat) == 2 }, "reconnect must re-emit join")
}

func TestCloseIsIdempotent(t *testing.T) {
	transport := newFakeTransport()
	s := newTestSession(t, transport, &fakeHistory{})
	transport.fire(EventConnected, "")

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Send("after close"), ErrClosed)
}
