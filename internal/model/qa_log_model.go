package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QALog struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Query        string         `gorm:"type:text"`
	CleanedQuery string         `gorm:"type:text"`
	Blocked      bool           `gorm:"index"`
	BlockCode    string         `gorm:"type:varchar(64)"`
	Blocks       datatypes.JSON `gorm:"type:jsonb"`
	Meta         datatypes.JSON `gorm:"type:jsonb"`
	SourceCount  int            `gorm:"default:0"`
	RetryCount   int            `gorm:"default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index"`
}

func (QALog) TableName() string {
	return "qa_logs"
}
