package search

import (
	"context"
	"fmt"

	"cdc-educa-be/internal/repository/unitofwork"
)

// CheckIntegrity verifies that the vector index and the article
// metadata agree: every article must have exactly one embedding row.
// A mismatch means a partial or corrupted ingestion and the service
// must not answer from it.
func CheckIntegrity(ctx context.Context, uow unitofwork.UnitOfWork) error {
	articles, err := uow.ArticleRepository().Count(ctx)
	if err != nil {
		return fmt.Errorf("count articles: %w", err)
	}
	embeddings, err := uow.ArticleEmbeddingRepository().Count(ctx)
	if err != nil {
		return fmt.Errorf("count embeddings: %w", err)
	}
	if articles != embeddings {
		return fmt.Errorf("corpus integrity violation: %d articles vs %d embeddings, re-run ingestion", articles, embeddings)
	}
	return nil
}
