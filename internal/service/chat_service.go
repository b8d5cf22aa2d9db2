package service

import (
	"context"
	"errors"

	"devmate-be/internal/dto"
	"devmate-be/internal/repository/specification"
	"devmate-be/internal/repository/unitofwork"
	"devmate-be/internal/websocket"

	"github.com/google/uuid"
)

// ErrNotConnectedPair guards history reads between users who never matched.
var ErrNotConnectedPair = errors.New("users do not share an accepted connection")

type IChatService interface {
	GetHistory(ctx context.Context, userID, targetID uuid.UUID) (*dto.ChatHistoryResponse, error)
}

type chatService struct {
	uowFactory  unitofwork.RepositoryFactory
	connections IConnectionService
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, connections IConnectionService) IChatService {
	return &chatService{
		uowFactory:  uowFactory,
		connections: connections,
	}
}

func (s *chatService) GetHistory(ctx context.Context, userID, targetID uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	target, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: targetID})
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	connected, err := s.connections.AreConnected(ctx, userID, targetID)
	if err != nil {
		return nil, err
	}
	if !connected {
		return nil, ErrNotConnectedPair
	}

	roomID := websocket.RoomID(userID, targetID)
	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByRoomID{RoomID: roomID},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := &dto.ChatHistoryResponse{Messages: make([]dto.ChatMessageResponse, 0, len(messages))}
	for _, msg := range messages {
		resp.Messages = append(resp.Messages, dto.ChatMessageResponse{
			Id:        msg.Id,
			SenderId:  msg.SenderId,
			FirstName: msg.SenderFirstName,
			LastName:  msg.SenderLastName,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}
	return resp, nil
}
