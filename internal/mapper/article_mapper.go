package mapper

import (
	"time"

	"cdc-educa-be/internal/entity"
	"cdc-educa-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ArticleMapper struct{}

func NewArticleMapper() *ArticleMapper {
	return &ArticleMapper{}
}

func (m *ArticleMapper) ToEntity(e *model.Article) *entity.Article {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.Article{
		Id:        e.Id,
		ChunkId:   e.ChunkId,
		Artigo:    e.Artigo,
		Lei:       e.Lei,
		Url:       e.Url,
		Texto:     e.Texto,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ArticleMapper) ToModel(e *entity.Article) *model.Article {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.Article{
		Id:        e.Id,
		ChunkId:   e.ChunkId,
		Artigo:    e.Artigo,
		Lei:       e.Lei,
		Url:       e.Url,
		Texto:     e.Texto,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ArticleMapper) ToEntities(articles []*model.Article) []*entity.Article {
	entities := make([]*entity.Article, len(articles))
	for i, a := range articles {
		entities[i] = m.ToEntity(a)
	}
	return entities
}

type ArticleEmbeddingMapper struct{}

func NewArticleEmbeddingMapper() *ArticleEmbeddingMapper {
	return &ArticleEmbeddingMapper{}
}

func (m *ArticleEmbeddingMapper) ToEntity(e *model.ArticleEmbedding) *entity.ArticleEmbedding {
	if e == nil {
		return nil
	}
	return &entity.ArticleEmbedding{
		Id:             e.Id,
		ArticleId:      e.ArticleId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
	}
}

func (m *ArticleEmbeddingMapper) ToModel(e *entity.ArticleEmbedding) *model.ArticleEmbedding {
	if e == nil {
		return nil
	}
	return &model.ArticleEmbedding{
		Id:             e.Id,
		ArticleId:      e.ArticleId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
	}
}
