package pipeline

import (
	"context"
	"fmt"
	"log"

	"cdc-educa-be/pkg/store"
)

const (
	topKDefault       = 5
	maxRetriesDefault = 1
)

// Orchestrator drives the five pipeline stages: triage, retrieval,
// drafting, validation and polish. Routing decisions live here, not in
// the nodes: before dispatching each stage the orchestrator consults
// the state, so a block set by any stage short-circuits the rest.
type Orchestrator struct {
	pii       PIIAnalyzer
	scope     ScopeAnalyzer
	searcher  SourceSearcher
	generator DraftGenerator
	validator Validator
	refiner   Refiner
	logger    *log.Logger
}

func NewOrchestrator(
	pii PIIAnalyzer,
	scope ScopeAnalyzer,
	searcher SourceSearcher,
	generator DraftGenerator,
	validator Validator,
	refiner Refiner,
	logger *log.Logger,
) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		pii:       pii,
		scope:     scope,
		searcher:  searcher,
		generator: generator,
		validator: validator,
		refiner:   refiner,
		logger:    logger,
	}
}

// ResultBlocks is the user-facing content envelope. On success the
// content fields are set; on a block only the error fields are.
type ResultBlocks struct {
	Summary    string               `json:"summary,omitempty"`
	Steps      []string             `json:"steps,omitempty"`
	LegalBasis []store.LegalBasis   `json:"legal_basis,omitempty"`
	Quiz       []store.QuizItem     `json:"quiz,omitempty"`
	Glossary   []store.GlossaryItem `json:"glossary,omitempty"`

	Error                    string   `json:"error,omitempty"`
	ErrorPII                 bool     `json:"error_pii,omitempty"`
	ErrorScope               bool     `json:"error_scope,omitempty"`
	ErrorInsufficientSources bool     `json:"error_insufficient_sources,omitempty"`
	ErrorValidationFailed    bool     `json:"error_validation_failed,omitempty"`
	Issues                   []string `json:"issues,omitempty"`
}

// Result is the complete outcome of one pipeline run.
type Result struct {
	Query        string            `json:"query"`
	CleanedQuery string            `json:"cleaned_query"`
	Blocks       ResultBlocks      `json:"blocks"`
	Sources      []store.SourceHit `json:"sources"`
	Meta         map[string]any    `json:"meta"`
}

func (r Result) Blocked() bool {
	return r.Blocks.Error != ""
}

// Run executes the pipeline for one query. k and maxRetries below one
// fall back to the defaults. The returned error reports only internal
// orchestration faults; user-facing refusals come back as blocks.
func (o *Orchestrator) Run(ctx context.Context, query string, k, maxRetries int) (Result, error) {
	if maxRetries < 0 {
		maxRetries = maxRetriesDefault
	}
	if k <= 0 {
		k = topKDefault
	}

	st := &State{
		Query:      query,
		K:          k,
		Meta:       make(map[string]any),
		MaxRetries: maxRetries,
	}

	o.triage(ctx, st)

	if !st.Blocked() {
		o.retrieve(ctx, st)
	}

	if !st.Blocked() {
		// Draft and validate with bounded retry. validate increments
		// RetryCount while budget remains and blocks once exhausted, so
		// the loop runs at most MaxRetries+1 times.
		for {
			o.draft(ctx, st)
			if o.validate(ctx, st) {
				break
			}
			if st.Blocked() {
				break
			}
		}
	}

	if !st.Blocked() {
		o.polish(ctx, st)
	}

	return o.finalize(st)
}

// finalize converts the terminal state into the wire-level result.
func (o *Orchestrator) finalize(st *State) (Result, error) {
	st.Meta["retries"] = st.RetryCount

	result := Result{
		Query:        st.Query,
		CleanedQuery: st.CleanedQuery,
		Sources:      st.Sources,
		Meta:         st.Meta,
	}

	if !st.Blocked() {
		result.Blocks = ResultBlocks{
			Summary:    st.Blocks.Summary,
			Steps:      st.Blocks.Steps,
			LegalBasis: st.Blocks.LegalBasis,
			Quiz:       st.Blocks.Quiz,
			Glossary:   st.Blocks.Glossary,
		}
		if result.Blocks.Summary == "" {
			return result, fmt.Errorf("pipeline finished without content or block reason")
		}
		return result, nil
	}

	reason := st.BlockReason
	blocks := ResultBlocks{
		Error:  reason.Message,
		Issues: reason.Issues,
	}
	switch reason.Code {
	case BlockPII:
		blocks.ErrorPII = true
	case BlockScope:
		blocks.ErrorScope = true
	case BlockInsufficientSources:
		blocks.ErrorInsufficientSources = true
	case BlockValidationFailed:
		blocks.ErrorValidationFailed = true
	default:
		return result, fmt.Errorf("unknown block code %q", reason.Code)
	}

	// A blocked run never ships sources or content.
	result.Sources = nil
	result.Blocks = blocks

	o.logger.Printf("[PIPELINE] Run blocked: code=%s retries=%d", reason.Code, st.RetryCount)
	return result, nil
}
