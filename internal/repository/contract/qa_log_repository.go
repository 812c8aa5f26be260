package contract

import (
	"context"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/repository/specification"
)

type QALogRepository interface {
	Create(ctx context.Context, log *entity.QALog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QALog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
