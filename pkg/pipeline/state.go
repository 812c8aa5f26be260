package pipeline

import "cdc-educa-be/pkg/store"

type BlockCode string

const (
	BlockPII                 BlockCode = "pii"
	BlockScope               BlockCode = "scope"
	BlockInsufficientSources BlockCode = "insufficient_sources"
	BlockValidationFailed    BlockCode = "validation_failed"
)

// BlockReason explains why a run was short-circuited. A run carries at
// most one reason: the first node that blocks ends the pipeline.
type BlockReason struct {
	Code    BlockCode
	Message string
	Issues  []string
}

// State is the mutable record threaded through the pipeline nodes.
type State struct {
	Query        string
	CleanedQuery string
	K            int
	Sources      []store.SourceHit
	Blocks       store.ContentBlocks
	BlockReason  *BlockReason
	Meta         map[string]any
	RetryCount   int
	MaxRetries   int
}

func (s *State) Blocked() bool {
	return s.BlockReason != nil
}

// Block records the short-circuit reason. The first block wins; later
// calls are ignored so a reason is never silently overwritten.
func (s *State) Block(code BlockCode, message string, issues ...string) {
	if s.BlockReason != nil {
		return
	}
	s.BlockReason = &BlockReason{
		Code:    code,
		Message: message,
		Issues:  issues,
	}
}
