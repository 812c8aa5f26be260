package entity

import (
	"time"

	"github.com/google/uuid"
)

// Article is one chunk of the consumer-protection code corpus. ChunkId
// is the stable slug from ingestion (e.g. "art-49"), Artigo the human
// readable article header, Lei the statute label.
type Article struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChunkId   string
	Artigo    string
	Lei       string
	Url       string
	Texto     string
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type ArticleEmbedding struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ArticleId      uuid.UUID `gorm:"type:uuid;index"`
	Document       string
	EmbeddingValue []float32
	CreatedAt      time.Time
}
