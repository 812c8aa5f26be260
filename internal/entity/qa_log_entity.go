package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QALog records one completed pipeline run for auditing.
type QALog struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Query        string
	CleanedQuery string
	Blocked      bool
	BlockCode    string
	Blocks       json.RawMessage
	Meta         json.RawMessage
	SourceCount  int
	RetryCount   int
	CreatedAt    time.Time
}
