package mapper

import (
	"devmate-be/internal/entity"
	"devmate-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

func (m *ChatMapper) ToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:              msg.Id,
		RoomId:          msg.RoomId,
		SenderId:        msg.SenderId,
		SenderFirstName: msg.SenderFirstName,
		SenderLastName:  msg.SenderLastName,
		Content:         msg.Content,
		CreatedAt:       msg.CreatedAt,
	}
}

func (m *ChatMapper) ToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:              msg.Id,
		RoomId:          msg.RoomId,
		SenderId:        msg.SenderId,
		SenderFirstName: msg.SenderFirstName,
		SenderLastName:  msg.SenderLastName,
		Content:         msg.Content,
		CreatedAt:       msg.CreatedAt,
	}
}

func (m *ChatMapper) ToEntities(msgs []*model.ChatMessage) []*entity.ChatMessage {
	entities := make([]*entity.ChatMessage, len(msgs))
	for i, msg := range msgs {
		entities[i] = m.ToEntity(msg)
	}
	return entities
}
