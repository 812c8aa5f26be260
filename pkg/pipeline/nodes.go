package pipeline

import (
	"context"
	"strings"

	"cdc-educa-be/pkg/guardrail"
	"cdc-educa-be/pkg/store"
)

// The node dependencies are narrow interfaces so tests can drive the
// orchestrator with stubs. The real implementations live in
// pkg/guardrail, pkg/rag and pkg/audit.

type PIIAnalyzer interface {
	Analyze(text string) guardrail.Analysis
}

type ScopeAnalyzer interface {
	Analyze(ctx context.Context, text string) guardrail.ScopeAnalysis
}

type SourceSearcher interface {
	Search(ctx context.Context, query string, k int) ([]store.SourceHit, error)
}

type DraftGenerator interface {
	Generate(ctx context.Context, query string, sources []store.SourceHit, k int) store.ContentBlocks
}

type Validator interface {
	Validate(ctx context.Context, query string, blocks store.ContentBlocks, sources []store.SourceHit) store.Verdict
}

type Refiner interface {
	Refine(ctx context.Context, blocks store.ContentBlocks) store.ContentBlocks
}

// Block messages shown to the user. Kept in Portuguese to match the
// audience of the service.
const (
	msgPII = "Falha: sua mensagem contém dado sensível (PII). Remova ou anonimize para continuar."

	msgNotLaw = "Pergunta fora do escopo jurídico. Sou um assistente educacional jurídico."

	msgOtherLaw = "Sou especializado em Direito do Consumidor (CDC). " +
		"Estamos expandindo minha inteligência para outras áreas do Direito."

	msgInsufficientSources = "Não encontrei informações suficientes sobre sua pergunta no CDC."

	msgValidationFailed = "Não consegui gerar uma resposta com qualidade suficiente. " +
		"Tente reformular sua pergunta."
)

// minSources is the floor below which retrieval cannot support a
// grounded answer.
const minSources = 2

// triage runs PII detection and scope classification over the trimmed
// query. PII is checked first so a sensitive out-of-scope message still
// gets the PII block.
func (o *Orchestrator) triage(ctx context.Context, st *State) {
	st.CleanedQuery = strings.TrimSpace(st.Query)

	analysis := o.pii.Analyze(st.CleanedQuery)
	st.Meta["policy"] = map[string]string{"pii": "block", "scope": "block"}
	st.Meta["triagem"] = analysis

	if analysis.HasPII {
		st.CleanedQuery = analysis.MaskedText
		st.Block(BlockPII, msgPII)
		return
	}

	scope := o.scope.Analyze(ctx, st.CleanedQuery)
	st.Meta["scope"] = scope

	switch scope.Domain {
	case guardrail.DomainNotLaw:
		st.Block(BlockScope, msgNotLaw)
	case guardrail.DomainOtherLaw:
		st.Block(BlockScope, msgOtherLaw)
	}
}

// retrieve fetches shaped sources. A search failure is treated as zero
// hits rather than a hard error: the insufficient-sources block is the
// user-facing outcome either way.
func (o *Orchestrator) retrieve(ctx context.Context, st *State) {
	sources, err := o.searcher.Search(ctx, st.CleanedQuery, st.K)
	if err != nil {
		o.logger.Printf("[PIPELINE] Retrieval failed, treating as no hits: %v", err)
		sources = nil
	}
	st.Sources = sources
	st.Meta["busca"] = map[string]any{"k": st.K, "hits": len(sources)}

	if len(sources) < minSources {
		st.Block(BlockInsufficientSources, msgInsufficientSources)
	}
}

func (o *Orchestrator) draft(ctx context.Context, st *State) {
	st.Blocks = o.generator.Generate(ctx, st.CleanedQuery, st.Sources, st.K)
}

// validate audits the draft and decides retry or block. Returns true
// when the draft passed and the pipeline may continue.
func (o *Orchestrator) validate(ctx context.Context, st *State) bool {
	verdict := o.validator.Validate(ctx, st.CleanedQuery, st.Blocks, st.Sources)
	st.Meta["auditor"] = verdict

	if verdict.IsValid {
		return true
	}

	if st.RetryCount < st.MaxRetries {
		st.RetryCount++
		o.logger.Printf("[PIPELINE] Draft rejected, retry %d/%d: %v", st.RetryCount, st.MaxRetries, verdict.Issues)
		return false
	}

	st.Block(BlockValidationFailed, msgValidationFailed, verdict.Issues...)
	return false
}

func (o *Orchestrator) polish(ctx context.Context, st *State) {
	st.Blocks = o.refiner.Refine(ctx, st.Blocks)
}
