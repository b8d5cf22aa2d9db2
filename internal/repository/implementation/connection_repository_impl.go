package implementation

import (
	"context"
	"errors"

	"devmate-be/internal/entity"
	"devmate-be/internal/mapper"
	"devmate-be/internal/model"
	"devmate-be/internal/repository/contract"
	"devmate-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ConnectionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConnectionMapper
}

func NewConnectionRepository(db *gorm.DB) contract.ConnectionRepository {
	return &ConnectionRepositoryImpl{
		db:     db,
		mapper: mapper.NewConnectionMapper(),
	}
}

func (r *ConnectionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConnectionRepositoryImpl) Create(ctx context.Context, request *entity.ConnectionRequest) error {
	modelReq := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Create(modelReq).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(modelReq)
	return nil
}

func (r *ConnectionRepositoryImpl) Update(ctx context.Context, request *entity.ConnectionRequest) error {
	modelReq := r.mapper.ToModel(request)
	if err := r.db.WithContext(ctx).Save(modelReq).Error; err != nil {
		return err
	}
	*request = *r.mapper.ToEntity(modelReq)
	return nil
}

func (r *ConnectionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConnectionRequest, error) {
	var modelReq model.ConnectionRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&modelReq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&modelReq), nil
}

func (r *ConnectionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConnectionRequest, error) {
	var modelReqs []*model.ConnectionRequest
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&modelReqs).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(modelReqs), nil
}

func (r *ConnectionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConnectionRequest{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
