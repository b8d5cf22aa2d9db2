package service

import (
	"context"
	"encoding/json"

	"devmate-be/internal/websocket"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
	EnqueueMessage(ctx context.Context, msg websocket.InboundChatMessage) error
}

// publisherService routes inbound chat frames onto the in-process message
// topic. The hub calls EnqueueMessage from connection read loops, so the
// write path never blocks on the database.
type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *publisherService) EnqueueMessage(ctx context.Context, msg websocket.InboundChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Publish(ctx, payload)
}
