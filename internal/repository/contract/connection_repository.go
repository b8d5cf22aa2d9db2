package contract

import (
	"context"

	"devmate-be/internal/entity"
	"devmate-be/internal/repository/specification"
)

type ConnectionRepository interface {
	Create(ctx context.Context, request *entity.ConnectionRequest) error
	Update(ctx context.Context, request *entity.ConnectionRequest) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConnectionRequest, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConnectionRequest, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
