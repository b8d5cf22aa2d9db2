package mapper

import (
	"devmate-be/internal/entity"
	"devmate-be/internal/model"
)

type ConnectionMapper struct{}

func NewConnectionMapper() *ConnectionMapper {
	return &ConnectionMapper{}
}

func (m *ConnectionMapper) ToEntity(r *model.ConnectionRequest) *entity.ConnectionRequest {
	if r == nil {
		return nil
	}
	return &entity.ConnectionRequest{
		Id:         r.Id,
		FromUserId: r.FromUserId,
		ToUserId:   r.ToUserId,
		Status:     entity.ConnectionStatus(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (m *ConnectionMapper) ToModel(r *entity.ConnectionRequest) *model.ConnectionRequest {
	if r == nil {
		return nil
	}
	return &model.ConnectionRequest{
		Id:         r.Id,
		FromUserId: r.FromUserId,
		ToUserId:   r.ToUserId,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (m *ConnectionMapper) ToEntities(reqs []*model.ConnectionRequest) []*entity.ConnectionRequest {
	entities := make([]*entity.ConnectionRequest, len(reqs))
	for i, r := range reqs {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
