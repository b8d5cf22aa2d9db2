package service

import (
	"context"
	"fmt"
	"time"

	"devmate-be/internal/model"
	"devmate-be/internal/pkg/logger"
	"devmate-be/internal/repository"
	"devmate-be/pkg/events"
	pktNats "devmate-be/pkg/nats"

	"github.com/google/uuid"
)

// Presence answers whether a user currently holds a live connection.
// Implemented by the WebSocket Hub.
type Presence interface {
	IsOnline(userID uuid.UUID) bool
}

// NotificationService turns CHAT_MESSAGE_SENT events into stored unread
// notifications for recipients who were offline when the message landed.
// Online recipients already got the frame through their room.
type NotificationService struct {
	repo       repository.NotificationRepository
	subscriber *pktNats.Subscriber
	presence   Presence
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub *pktNats.Subscriber, presence Presence, log logger.ILogger) *NotificationService {
	return &NotificationService{
		repo:       repo,
		subscriber: sub,
		presence:   presence,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.CHAT_MESSAGE_SENT", "chat-notif-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to chat events", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	recipientID, err := parseUUIDField(payload, "recipient_id")
	if err != nil {
		s.logger.Warn("NotificationService", "Event missing recipient, skipping", map[string]interface{}{"error": err.Error()})
		return nil
	}

	if s.presence != nil && s.presence.IsOnline(recipientID) {
		return nil
	}

	senderName, _ := payload["sender_name"].(string)
	preview, _ := payload["preview"].(string)

	var actorID *uuid.UUID
	if id, err := parseUUIDField(payload, "sender_id"); err == nil {
		actorID = &id
	}

	notification := &model.Notification{
		ID:        uuid.New(),
		UserID:    recipientID,
		ActorID:   actorID,
		TypeCode:  "CHAT_MESSAGE",
		Title:     fmt.Sprintf("New message from %s", senderName),
		Message:   preview,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		s.logger.Error("NotificationService", "Failed to store notification", map[string]interface{}{
			"recipient_id": recipientID,
			"error":        err.Error(),
		})
		return err // Nak, retry later
	}

	s.logger.Info("NotificationService", "Stored offline notification", map[string]interface{}{
		"recipient_id": recipientID,
	})
	return nil
}

func parseUUIDField(payload map[string]interface{}, field string) (uuid.UUID, error) {
	raw, ok := payload[field].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("field %q is not a string", field)
	}
	return uuid.Parse(raw)
}
