package model

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkId   string    `gorm:"type:varchar(64);uniqueIndex"`
	Artigo    string    `gorm:"type:text"`
	Lei       string    `gorm:"type:varchar(32)"`
	Url       string    `gorm:"type:text"`
	Texto     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Article) TableName() string {
	return "articles"
}
