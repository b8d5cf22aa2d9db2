package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"devmate-be/internal/entity"
	"devmate-be/internal/repository/unitofwork"
	"devmate-be/internal/websocket"
	"devmate-be/pkg/events"
	pktNats "devmate-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// MaxMessageContentLen bounds a single chat message after trimming.
const MaxMessageContentLen = 1000

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the chat message topic: validate, persist, fan out
// to the room, then publish the domain event for downstream workers.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		hub:            hub,
		eventPublisher: eventPublisher,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// ValidateContent applies the message rules shared with clients: trim first,
// reject empty, cap length in runes.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("message content is empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxMessageContentLen {
		return "", fmt.Errorf("message content exceeds %d characters", MaxMessageContentLen)
	}
	return trimmed, nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload websocket.InboundChatMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal chat message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	content, err := ValidateContent(payload.Content)
	if err != nil {
		log.Printf("[WARN] Dropping invalid message from %s: %v", payload.SenderID, err)
		msg.Ack()
		return
	}

	chatMessage := &entity.ChatMessage{
		Id:              uuid.New(),
		RoomId:          payload.RoomID,
		SenderId:        payload.SenderID,
		SenderFirstName: payload.SenderFirstName,
		SenderLastName:  payload.SenderLastName,
		Content:         content,
		CreatedAt:       time.Now(),
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatMessageRepository().Create(ctx, chatMessage); err != nil {
		log.Printf("[ERROR] Failed to persist chat message: %v", err)
		msg.Nack() // Nack for retriable errors
		return
	}

	// Fan out to the room. Sender included: its clients use the echo as the
	// delivery confirmation.
	frame, err := websocket.NewFrame(websocket.EventMessageReceived, websocket.MessageBroadcast{
		SenderID:  chatMessage.SenderId,
		FirstName: chatMessage.SenderFirstName,
		LastName:  chatMessage.SenderLastName,
		Content:   chatMessage.Content,
		CreatedAt: chatMessage.CreatedAt,
	})
	if err != nil {
		log.Printf("[ERROR] Failed to encode broadcast frame: %v", err)
		msg.Ack() // Persisted; history will still carry it.
		return
	}
	cs.hub.DeliverToRoom(chatMessage.RoomId, uuid.Nil, frame)

	if cs.eventPublisher != nil {
		event := events.BaseEvent{
			Type: "CHAT_MESSAGE_SENT",
			Data: map[string]interface{}{
				"message_id":   chatMessage.Id,
				"room_id":      chatMessage.RoomId,
				"sender_id":    chatMessage.SenderId,
				"sender_name":  chatMessage.SenderFirstName,
				"recipient_id": payload.TargetUserID,
				"preview":      preview(chatMessage.Content),
			},
			OccurredAt: chatMessage.CreatedAt,
		}
		if err := cs.eventPublisher.Publish(ctx, event); err != nil {
			log.Printf("[WARN] Failed to publish CHAT_MESSAGE_SENT event: %v", err)
		}
	}

	msg.Ack()
}

func preview(content string) string {
	const max = 80
	if utf8.RuneCountInString(content) <= max {
		return content
	}
	runes := []rune(content)
	return string(runes[:max]) + "..."
}
