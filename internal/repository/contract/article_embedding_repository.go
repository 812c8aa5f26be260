package contract

import (
	"context"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/repository/specification"
)

// ScoredArticleEmbedding wraps ArticleEmbedding with its similarity score
type ScoredArticleEmbedding struct {
	Embedding  *entity.ArticleEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ArticleEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ArticleEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ArticleEmbedding) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*ScoredArticleEmbedding, error)
}
