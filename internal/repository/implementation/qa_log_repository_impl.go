package implementation

import (
	"context"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/mapper"
	"cdc-educa-be/internal/model"
	"cdc-educa-be/internal/repository/contract"
	"cdc-educa-be/internal/repository/specification"

	"gorm.io/gorm"
)

type QALogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.QALogMapper
}

func NewQALogRepository(db *gorm.DB) contract.QALogRepository {
	return &QALogRepositoryImpl{
		db:     db,
		mapper: mapper.NewQALogMapper(),
	}
}

func (r *QALogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QALogRepositoryImpl) Create(ctx context.Context, log *entity.QALog) error {
	m := r.mapper.ToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*log = *r.mapper.ToEntity(m)
	return nil
}

func (r *QALogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QALog, error) {
	var models []*model.QALog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *QALogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.QALog{}).Count(&count).Error
	return count, err
}
