package dto

import (
	"encoding/json"

	"cdc-educa-be/pkg/pipeline"
	"cdc-educa-be/pkg/store"
)

type AskRequest struct {
	Query string `json:"query" validate:"required,min=3"`
	K     int    `json:"k" validate:"omitempty,min=1,max=10"`
	// MaxRetries overrides the configured redraft budget when set.
	MaxRetries *int `json:"max_retries" validate:"omitempty,min=0,max=5"`
}

type AskResponse struct {
	Query        string                `json:"query"`
	CleanedQuery string                `json:"cleaned_query"`
	Blocks       pipeline.ResultBlocks `json:"blocks"`
	Sources      []store.SourceHit     `json:"sources"`
	Meta         map[string]any        `json:"meta"`
	Cached       bool                  `json:"cached"`
}

// QACompletedMessage is the payload published on the internal event bus
// after every pipeline run, blocked or not.
type QACompletedMessage struct {
	Query        string          `json:"query"`
	CleanedQuery string          `json:"cleaned_query"`
	Blocked      bool            `json:"blocked"`
	BlockCode    string          `json:"block_code,omitempty"`
	Blocks       json.RawMessage `json:"blocks"`
	Meta         json.RawMessage `json:"meta"`
	SourceCount  int             `json:"source_count"`
	RetryCount   int             `json:"retry_count"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Articles   int64  `json:"articles"`
	Embeddings int64  `json:"embeddings"`
}

// StreamRequest is the first frame a websocket client sends.
type StreamRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// StreamFrame is one websocket message during a streamed answer.
type StreamFrame struct {
	Type string `json:"type"` // "chunk", "result" or "error"
	Data any    `json:"data"`
}
