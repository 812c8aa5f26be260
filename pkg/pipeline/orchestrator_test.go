package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"cdc-educa-be/pkg/guardrail"
	"cdc-educa-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScope struct {
	domain guardrail.Domain
}

func (s *stubScope) Analyze(ctx context.Context, text string) guardrail.ScopeAnalysis {
	return guardrail.ScopeAnalysis{
		Domain:     s.domain,
		IsLegal:    s.domain != guardrail.DomainNotLaw,
		IsConsumer: s.domain == guardrail.DomainCDC,
		Source:     "heuristic",
	}
}

type stubSearcher struct {
	hits []store.SourceHit
	err  error
}

func (s *stubSearcher) Search(ctx context.Context, query string, k int) ([]store.SourceHit, error) {
	return s.hits, s.err
}

type stubGenerator struct {
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, query string, sources []store.SourceHit, k int) store.ContentBlocks {
	s.calls++
	return store.ContentBlocks{
		Summary:    "Resumo educativo sobre seus direitos.",
		Steps:      []string{"Organize provas"},
		LegalBasis: []store.LegalBasis{{Label: "Art. 49"}},
	}
}

type stubValidator struct {
	verdicts []store.Verdict
	calls    int
}

func (s *stubValidator) Validate(ctx context.Context, query string, blocks store.ContentBlocks, sources []store.SourceHit) store.Verdict {
	v := s.verdicts[s.calls%len(s.verdicts)]
	s.calls++
	return v
}

type stubRefiner struct {
	called bool
}

func (s *stubRefiner) Refine(ctx context.Context, blocks store.ContentBlocks) store.ContentBlocks {
	s.called = true
	blocks.Summary = "[polido] " + blocks.Summary
	return blocks
}

var validVerdict = store.Verdict{IsValid: true, AlignmentScore: 0.9, CitationsValid: true, IsEducational: true}

var invalidVerdict = store.Verdict{
	IsValid:        false,
	AlignmentScore: 0.2,
	CitationsValid: true,
	IsEducational:  true,
	Issues:         []string{"Low alignment score: 0.20"},
}

var twoSources = []store.SourceHit{
	{ID: "art-49", ArticleLabel: "Art. 49", Score: 0.9},
	{ID: "art-18", ArticleLabel: "Art. 18", Score: 0.8},
}

func newTestOrchestrator(scope *stubScope, searcher *stubSearcher, gen *stubGenerator, val *stubValidator, ref *stubRefiner) *Orchestrator {
	return NewOrchestrator(
		guardrail.NewInputGuard(nil),
		scope,
		searcher,
		gen,
		val,
		ref,
		nil,
	)
}

func TestRunHappyPath(t *testing.T) {
	gen := &stubGenerator{}
	ref := &stubRefiner{}
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		gen,
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		ref,
	)

	result, err := o.Run(context.Background(), "Comprei um produto com defeito, e agora?", 0, 1)
	require.NoError(t, err)

	assert.False(t, result.Blocked())
	assert.Equal(t, "[polido] Resumo educativo sobre seus direitos.", result.Blocks.Summary)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 1, gen.calls)
	assert.True(t, ref.called)
	assert.Equal(t, 0, result.Meta["retries"])
	assert.Equal(t, result.Query, result.CleanedQuery)
}

func TestRunBlocksOnPII(t *testing.T) {
	searcher := &stubSearcher{hits: twoSources}
	gen := &stubGenerator{}
	ref := &stubRefiner{}
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		searcher,
		gen,
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		ref,
	)

	result, err := o.Run(context.Background(), "Meu CPF é 123.456.789-09, posso devolver?", 5, 1)
	require.NoError(t, err)

	assert.True(t, result.Blocked())
	assert.True(t, result.Blocks.ErrorPII)
	assert.Contains(t, result.Blocks.Error, "dado sensível")
	assert.Empty(t, result.Blocks.Summary, "blocked run must not carry content")
	assert.Empty(t, result.Sources)
	assert.NotContains(t, result.CleanedQuery, "123.456.789-09", "cleaned query must be masked")

	// No downstream node may have run.
	assert.Equal(t, 0, gen.calls)
	assert.False(t, ref.called)
}

func TestRunBlocksOutOfScope(t *testing.T) {
	tests := []struct {
		name    string
		domain  guardrail.Domain
		wantMsg string
	}{
		{"not legal at all", guardrail.DomainNotLaw, "fora do escopo jurídico"},
		{"other legal area", guardrail.DomainOtherLaw, "Direito do Consumidor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			o := newTestOrchestrator(
				&stubScope{domain: tt.domain},
				&stubSearcher{hits: twoSources},
				gen,
				&stubValidator{verdicts: []store.Verdict{validVerdict}},
				&stubRefiner{},
			)

			result, err := o.Run(context.Background(), "uma pergunta qualquer", 5, 1)
			require.NoError(t, err)

			assert.True(t, result.Blocks.ErrorScope)
			assert.Contains(t, result.Blocks.Error, tt.wantMsg)
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestRunBlocksOnInsufficientSources(t *testing.T) {
	tests := []struct {
		name string
		hits []store.SourceHit
		err  error
	}{
		{"no hits", nil, nil},
		{"single hit", twoSources[:1], nil},
		{"search failure treated as no hits", nil, errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			o := newTestOrchestrator(
				&stubScope{domain: guardrail.DomainCDC},
				&stubSearcher{hits: tt.hits, err: tt.err},
				gen,
				&stubValidator{verdicts: []store.Verdict{validVerdict}},
				&stubRefiner{},
			)

			result, err := o.Run(context.Background(), "posso devolver?", 5, 1)
			require.NoError(t, err)

			assert.True(t, result.Blocks.ErrorInsufficientSources)
			assert.Contains(t, result.Blocks.Error, "informações suficientes")
			assert.Equal(t, 0, gen.calls)
		})
	}
}

func TestRunRetriesThenBlocks(t *testing.T) {
	gen := &stubGenerator{}
	val := &stubValidator{verdicts: []store.Verdict{invalidVerdict}}
	ref := &stubRefiner{}
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		gen,
		val,
		ref,
	)

	maxRetries := 2
	result, err := o.Run(context.Background(), "posso devolver?", 5, maxRetries)
	require.NoError(t, err)

	// One initial draft plus maxRetries redrafts, then blocked.
	assert.Equal(t, maxRetries+1, gen.calls)
	assert.Equal(t, maxRetries+1, val.calls)
	assert.True(t, result.Blocks.ErrorValidationFailed)
	assert.Contains(t, result.Blocks.Error, "reformular")
	assert.Equal(t, invalidVerdict.Issues, result.Blocks.Issues)
	assert.Equal(t, maxRetries, result.Meta["retries"])
	assert.False(t, ref.called, "polish must not run on a blocked draft")
}

func TestRunRetryRecovers(t *testing.T) {
	gen := &stubGenerator{}
	val := &stubValidator{verdicts: []store.Verdict{invalidVerdict, validVerdict}}
	ref := &stubRefiner{}
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		gen,
		val,
		ref,
	)

	result, err := o.Run(context.Background(), "posso devolver?", 5, 1)
	require.NoError(t, err)

	assert.False(t, result.Blocked())
	assert.Equal(t, 2, gen.calls)
	assert.True(t, ref.called)
	assert.Equal(t, 1, result.Meta["retries"])
}

func TestRunZeroRetriesBlocksImmediately(t *testing.T) {
	gen := &stubGenerator{}
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		gen,
		&stubValidator{verdicts: []store.Verdict{invalidVerdict}},
		&stubRefiner{},
	)

	result, err := o.Run(context.Background(), "posso devolver?", 5, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.True(t, result.Blocks.ErrorValidationFailed)
}

func TestRunTrimsCleanedQuery(t *testing.T) {
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		&stubGenerator{},
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		&stubRefiner{},
	)

	result, err := o.Run(context.Background(), "  Comprei um produto com defeito, e agora?  ", 0, 1)
	require.NoError(t, err)

	assert.Equal(t, "Comprei um produto com defeito, e agora?", result.CleanedQuery)
	assert.Equal(t, "  Comprei um produto com defeito, e agora?  ", result.Query)
}

func TestRunMasksPIIInPaddedQuery(t *testing.T) {
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		&stubGenerator{},
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		&stubRefiner{},
	)

	result, err := o.Run(context.Background(), "  Meu CPF é 123.456.789-09  ", 5, 1)
	require.NoError(t, err)

	assert.True(t, result.Blocks.ErrorPII)
	assert.NotContains(t, result.CleanedQuery, "123.456.789-09")
	assert.Equal(t, result.CleanedQuery, strings.TrimSpace(result.CleanedQuery))
}

func TestRunRecordsTriagePolicy(t *testing.T) {
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		&stubGenerator{},
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		&stubRefiner{},
	)

	result, err := o.Run(context.Background(), "posso devolver?", 5, 1)
	require.NoError(t, err)

	policy, ok := result.Meta["policy"].(map[string]string)
	require.True(t, ok, "triage policy must be recorded in meta")
	assert.Equal(t, "block", policy["pii"])
	assert.Equal(t, "block", policy["scope"])
}

func TestRunAuditorMetaRecorded(t *testing.T) {
	o := newTestOrchestrator(
		&stubScope{domain: guardrail.DomainCDC},
		&stubSearcher{hits: twoSources},
		&stubGenerator{},
		&stubValidator{verdicts: []store.Verdict{validVerdict}},
		&stubRefiner{},
	)

	result, err := o.Run(context.Background(), "posso devolver?", 5, 1)
	require.NoError(t, err)

	verdict, ok := result.Meta["auditor"].(store.Verdict)
	require.True(t, ok, "auditor verdict must be recorded in meta")
	assert.True(t, verdict.IsValid)
}
