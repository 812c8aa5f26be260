package draft

import (
	"context"
	"errors"
	"testing"

	"cdc-educa-be/pkg/llm"
	"cdc-educa-be/pkg/store"
)

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.reply, s.err
}

var testSources = []store.SourceHit{
	{ID: "art-49", ArticleLabel: "Art. 49", LawLabel: "8078/90", URL: "https://example.org/art-49", Text: "O consumidor pode desistir do contrato..."},
	{ID: "art-18", ArticleLabel: "Art. 18", LawLabel: "8078/90", URL: "https://example.org/art-18", Text: "Os fornecedores respondem solidariamente..."},
}

func TestGenerateParsesLLMDraft(t *testing.T) {
	reply := "```json\n" +
		`{"summary":"Você tem 7 dias para desistir.","steps":["Passo 1"],"quiz":[{"q":"Prazo?","a":"7 dias","ref":"CDC Art. 49"}],"glossary":[]}` +
		"\n```"
	gen := NewGenerator(&stubLLM{reply: reply}, nil)

	blocks := gen.Generate(context.Background(), "posso devolver?", testSources, 5)
	if blocks.Summary != "Você tem 7 dias para desistir." {
		t.Errorf("Summary = %q", blocks.Summary)
	}
	if len(blocks.Steps) != 1 || blocks.Steps[0] != "Passo 1" {
		t.Errorf("Steps = %+v", blocks.Steps)
	}
	if len(blocks.LegalBasis) != 2 {
		t.Fatalf("LegalBasis = %+v, want 2 entries from sources", blocks.LegalBasis)
	}
	if blocks.LegalBasis[0].Label != "Art. 49" {
		t.Errorf("LegalBasis[0].Label = %q", blocks.LegalBasis[0].Label)
	}
}

func TestGenerateFallsBackOnLLMError(t *testing.T) {
	gen := NewGenerator(&stubLLM{err: errors.New("connection refused")}, nil)

	blocks := gen.Generate(context.Background(), "posso devolver?", testSources, 5)
	if blocks.Summary == "" {
		t.Fatal("fallback must still produce a summary")
	}
	if len(blocks.Steps) == 0 {
		t.Error("fallback must still produce steps")
	}
	if len(blocks.LegalBasis) != 2 {
		t.Errorf("fallback LegalBasis = %+v, want 2 entries", blocks.LegalBasis)
	}
}

func TestGenerateFallsBackOnGarbage(t *testing.T) {
	gen := NewGenerator(&stubLLM{reply: "claro! aqui está a resposta..."}, nil)

	blocks := gen.Generate(context.Background(), "posso devolver?", testSources, 5)
	if blocks.Summary == "" {
		t.Fatal("fallback must still produce a summary")
	}
}

func TestLegalBasisRespectsK(t *testing.T) {
	basis := legalBasisFromSources(testSources, 1)
	if len(basis) != 1 {
		t.Fatalf("len = %d, want 1", len(basis))
	}
	if basis[0].Label != "Art. 49" {
		t.Errorf("Label = %q", basis[0].Label)
	}
}

func TestLegalBasisLabelFallbacks(t *testing.T) {
	sources := []store.SourceHit{
		{ID: "art-49"},
		{},
	}
	basis := legalBasisFromSources(sources, 5)
	if basis[0].Label != "art-49" {
		t.Errorf("label should fall back to id, got %q", basis[0].Label)
	}
	if basis[1].Label != "referência" {
		t.Errorf("label should fall back to placeholder, got %q", basis[1].Label)
	}
}

func TestStripJSONFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripJSONFence(tt.in); got != tt.want {
			t.Errorf("stripJSONFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
