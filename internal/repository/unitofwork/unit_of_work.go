package unitofwork

import (
	"context"

	"cdc-educa-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ArticleRepository() contract.ArticleRepository
	ArticleEmbeddingRepository() contract.ArticleEmbeddingRepository
	QALogRepository() contract.QALogRepository
}
