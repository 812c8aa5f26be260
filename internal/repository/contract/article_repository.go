package contract

import (
	"context"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ArticleRepository interface {
	Create(ctx context.Context, article *entity.Article) error
	CreateBulk(ctx context.Context, articles []*entity.Article) error
	Update(ctx context.Context, article *entity.Article) error
	DeleteAll(ctx context.Context) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Article, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Article, error)
	FindByIds(ctx context.Context, ids []uuid.UUID) ([]*entity.Article, error)
	FindByChunkId(ctx context.Context, chunkId string) (*entity.Article, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
