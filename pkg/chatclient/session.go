package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"devmate-be/internal/pkg/logger"
)

// MaxMessageLen is the maximum accepted message length in characters.
const MaxMessageLen = 1000

const defaultTypingWindow = 3 * time.Second

var (
	ErrClosed         = errors.New("chat session closed")
	ErrNotConnected   = errors.New("chat channel not connected")
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = fmt.Errorf("message exceeds %d characters", MaxMessageLen)
)

// Identity is the authenticated local user, injected at construction instead
// of read from ambient state.
type Identity struct {
	UserID    string
	FirstName string
	LastName  string
}

type SessionConfig struct {
	Identity     Identity
	TargetUserID string
	Transport    Transport
	History      HistoryFetcher
	Logger       logger.ILogger

	// TypingWindow is how long the peer-typing flag stays set without a
	// refreshing typing event. Defaults to 3s.
	TypingWindow time.Duration
}

// Session owns one live channel for one conversation view. It is bound to a
// fixed (identity, target) pair for its whole lifetime: switching to another
// conversation means closing this session and opening a new one, which is how
// the old room's events are guaranteed to stop reaching this handler.
//
// All state transitions run on a single event loop fed by the transport
// stream and the one-shot history fetch, so ordering and dedup behave the
// same regardless of how those interleave.
type Session struct {
	cfg SessionConfig

	mu          sync.Mutex
	timeline    *Timeline
	connected   bool
	joined      bool
	unavailable bool
	peerTyping  bool
	typingTimer *time.Timer
	started     bool
	closed      bool

	cancel    context.CancelFunc
	done      chan struct{}
	historyCh chan historyResult
}

type historyResult struct {
	messages []Message
	err      error
}

func NewSession(cfg SessionConfig) (*Session, error) {
	if cfg.Identity.UserID == "" {
		return nil, errors.New("chatclient: current user id is required")
	}
	if cfg.TargetUserID == "" {
		return nil, errors.New("chatclient: target user id is required")
	}
	if cfg.Transport == nil {
		return nil, errors.New("chatclient: transport is required")
	}
	if cfg.History == nil {
		return nil, errors.New("chatclient: history fetcher is required")
	}
	if cfg.TypingWindow <= 0 {
		cfg.TypingWindow = defaultTypingWindow
	}

	return &Session{
		cfg:       cfg,
		timeline:  NewTimeline(),
		done:      make(chan struct{}),
		historyCh: make(chan historyResult, 1),
	}, nil
}

// Start opens the channel and issues the historical fetch. The two proceed
// concurrently; the timeline reconciliation tolerates any interleaving.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.started {
		s.mu.Unlock()
		return errors.New("chatclient: session already started")
	}
	s.started = true
	s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)

	if err := s.cfg.Transport.Connect(ctx); err != nil {
		return fmt.Errorf("connect chat channel: %w", err)
	}

	go s.fetchHistory(ctx)
	go s.loop(ctx)
	return nil
}

// Close detaches the event loop first, then releases the transport, so a slow
// final event in the disconnect window is dropped instead of being delivered
// to a disposed session. Idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.typingTimer != nil {
		s.typingTimer.Stop()
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return s.cfg.Transport.Close()
}

// Send emits one chat message. The content must be non-empty after trimming
// and at most MaxMessageLen characters. While disconnected this is a guarded
// no-op error: nothing is queued and nothing is appended locally, because the
// rendered timeline only ever holds server-confirmed messages.
func (s *Session) Send(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return ErrEmptyMessage
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageLen {
		return ErrMessageTooLong
	}

	s.mu.Lock()
	closed, connected := s.closed, s.connected
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !connected {
		return ErrNotConnected
	}

	return s.cfg.Transport.Emit(EmitSendMessage, SendMessagePayload{
		FirstName:    s.cfg.Identity.FirstName,
		UserID:       s.cfg.Identity.UserID,
		TargetUserID: s.cfg.TargetUserID,
		Content:      trimmed,
	})
}

// Typing emits the best-effort typing signal. It is silently dropped while
// the channel is down; there is no acknowledgement, retry or queue.
func (s *Session) Typing() {
	s.mu.Lock()
	ok := !s.closed && s.connected
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.cfg.Transport.Emit(EmitTyping, TypingPayload{
		UserID:       s.cfg.Identity.UserID,
		TargetUserID: s.cfg.TargetUserID,
	}); err != nil {
		s.logWarn("typing emit dropped", map[string]interface{}{"error": err.Error()})
	}
}

// Messages returns a snapshot of the merged timeline.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Messages()
}

// Groups returns the timeline bucketed by calendar day for rendering.
func (s *Session) Groups() []DateGroup {
	return GroupByDate(s.Messages(), time.Now())
}

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

func (s *Session) PeerTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerTyping
}

// TargetUnavailable reports whether the service refused the room join for
// this conversation. The view renders a conversation-not-available state
// instead of an empty timeline. Cleared on reconnect, since the pair may
// have been accepted in the meantime.
func (s *Session) TargetUnavailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unavailable
}

func (s *Session) HistoryLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.HistoryLoaded()
}

func (s *Session) fetchHistory(ctx context.Context) {
	msgs, err := s.cfg.History.FetchHistory(ctx, s.cfg.TargetUserID)
	select {
	case s.historyCh <- historyResult{messages: msgs, err: err}:
	case <-ctx.Done():
	}
}

func (s *Session) loop(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-s.historyCh:
			s.onHistory(res)
		case ev, ok := <-s.cfg.Transport.Events():
			if !ok {
				return
			}
			s.onEvent(ev)
		}
	}
}

func (s *Session) onHistory(res historyResult) {
	if res.err != nil {
		// Non-fatal: live delivery still works against whatever is
		// already rendered.
		s.logWarn("history fetch failed", map[string]interface{}{
			"target_user_id": s.cfg.TargetUserID,
			"error":          res.err.Error(),
		})
		return
	}
	s.mu.Lock()
	s.timeline.ApplyHistory(res.messages)
	s.mu.Unlock()
}

func (s *Session) onEvent(ev Event) {
	switch ev.Kind {
	case EventConnected:
		s.onConnected()
	case EventDisconnected:
		s.mu.Lock()
		s.connected = false
		s.joined = false
		s.peerTyping = false
		s.mu.Unlock()
	case EventMessage:
		s.onMessage(ev.Payload)
	case EventTyping:
		s.onTyping(ev.Payload)
	case EventJoinRejected:
		s.onJoinRejected(ev.Payload)
	}
}

// onConnected joins the conversation room. The join is edge-triggered on the
// connect-ready transition and guarded by the joined flag, so a repeated
// ready signal within one connection produces exactly one join emission,
// while every reconnect re-joins.
func (s *Session) onConnected() {
	s.mu.Lock()
	s.connected = true
	s.unavailable = false
	alreadyJoined := s.joined
	s.joined = true
	s.mu.Unlock()
	if alreadyJoined {
		return
	}

	err := s.cfg.Transport.Emit(EmitJoinChat, JoinChatPayload{
		FirstName:    s.cfg.Identity.FirstName,
		UserID:       s.cfg.Identity.UserID,
		TargetUserID: s.cfg.TargetUserID,
	})
	if err != nil {
		// Leave joined unset so the next ready signal retries.
		s.mu.Lock()
		s.joined = false
		s.mu.Unlock()
		s.logWarn("join emit failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Session) onMessage(payload json.RawMessage) {
	var w WireMessage
	if err := json.Unmarshal(payload, &w); err != nil {
		s.logWarn("malformed message payload", map[string]interface{}{"error": err.Error()})
		return
	}
	m := Normalize(w)
	s.mu.Lock()
	s.timeline.ApplyLive(m)
	s.mu.Unlock()
}

func (s *Session) onJoinRejected(payload json.RawMessage) {
	var p JoinRejectedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	// A refusal for another conversation is stale; this session is bound to
	// one target for its whole lifetime.
	if p.TargetUserID != "" && p.TargetUserID != s.cfg.TargetUserID {
		return
	}

	s.mu.Lock()
	s.unavailable = true
	s.joined = false
	s.mu.Unlock()
	s.logWarn("join rejected", map[string]interface{}{
		"target_user_id": s.cfg.TargetUserID,
		"reason":         p.Reason,
	})
}

func (s *Session) onTyping(payload json.RawMessage) {
	var p TypingPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return
	}
	if p.UserID == "" || p.UserID == s.cfg.Identity.UserID {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.peerTyping = true
	if s.typingTimer != nil {
		s.typingTimer.Stop()
	}
	s.typingTimer = time.AfterFunc(s.cfg.TypingWindow, func() {
		s.mu.Lock()
		s.peerTyping = false
		s.mu.Unlock()
	})
}

func (s *Session) logWarn(msg string, details map[string]interface{}) {
	if s.cfg.Logger != nil {
		s.cfg.Logger.Warn("ChatSession", msg, details)
	}
}
