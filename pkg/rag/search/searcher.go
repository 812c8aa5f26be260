package search

import (
	"context"
	"fmt"
	"log"

	"cdc-educa-be/internal/repository/unitofwork"
	"cdc-educa-be/pkg/embedding"
	"cdc-educa-be/pkg/store"

	"github.com/google/uuid"
)

// Searcher handles vector search over the article corpus
type Searcher struct {
	embeddingProvider embedding.EmbeddingProvider
	logger            *log.Logger
}

func NewSearcher(embeddingProvider embedding.EmbeddingProvider, logger *log.Logger) *Searcher {
	if logger == nil {
		logger = log.Default()
	}
	return &Searcher{
		embeddingProvider: embeddingProvider,
		logger:            logger,
	}
}

// Config encapsulates search parameters
type Config struct {
	DBThreshold float64
	TopKDefault int
	MaxTopK     int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		DBThreshold: 0.0,
		TopKDefault: 5,
		MaxTopK:     10,
	}
}

// Execute embeds the query, runs similarity search and returns shaped
// hits: at most k results, deduplicated, best ranked first. The raw
// fetch is oversized (2x k) so dedup does not starve the result set.
func (s *Searcher) Execute(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	query string,
	k int,
	config Config,
) ([]store.SourceHit, error) {

	k = ClampTopK(k, config.TopKDefault, config.MaxTopK)

	embeddingRes, err := s.embeddingProvider.Generate(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("generate query embedding: %w", err)
	}

	scored, err := uow.ArticleEmbeddingRepository().SearchSimilarWithScore(
		ctx,
		embeddingRes.Embedding.Values,
		2*k,
		config.DBThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	if len(scored) == 0 {
		s.logger.Printf("[SEARCH] No candidates for query (k=%d)", k)
		return nil, nil
	}

	// Hydrate article metadata for the scored embeddings
	ids := make([]uuid.UUID, 0, len(scored))
	for _, sc := range scored {
		ids = append(ids, sc.Embedding.ArticleId)
	}
	articles, err := uow.ArticleRepository().FindByIds(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrate articles: %w", err)
	}
	byId := make(map[uuid.UUID]int, len(articles))
	for i, a := range articles {
		byId[a.Id] = i
	}

	hits := make([]store.SourceHit, 0, len(scored))
	for _, sc := range scored {
		idx, ok := byId[sc.Embedding.ArticleId]
		if !ok {
			s.logger.Printf("[SEARCH] Embedding %s has no article row, skipping", sc.Embedding.Id)
			continue
		}
		a := articles[idx]
		hits = append(hits, store.SourceHit{
			ID:           a.ChunkId,
			ArticleLabel: a.Artigo,
			LawLabel:     a.Lei,
			URL:          a.Url,
			Text:         a.Texto,
			Score:        sc.Similarity,
		})
	}

	shaped := Shape(hits, k)
	s.logger.Printf("[SEARCH] %d raw candidates, %d after shaping (k=%d)", len(hits), len(shaped), k)
	return shaped, nil
}
