package polish

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
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func TestRefineRewritesSummary(t *testing.T) {
	provider := &stubLLM{reply: "  Texto mais simples.  "}
	refiner := NewRefiner(provider, nil)

	blocks := store.ContentBlocks{
		Summary: "Texto original complexo.",
		Steps:   []string{"Passo 1"},
	}
	got := refiner.Refine(context.Background(), blocks)

	if got.Summary != "Texto mais simples." {
		t.Errorf("Summary = %q, want rewritten text", got.Summary)
	}
	if len(got.Steps) != 1 || got.Steps[0] != "Passo 1" {
		t.Errorf("Steps changed: %v", got.Steps)
	}
}

func TestRefineKeepsDraftOnLLMError(t *testing.T) {
	provider := &stubLLM{err: errors.New("connection refused")}
	refiner := NewRefiner(provider, nil)

	blocks := store.ContentBlocks{Summary: "Texto original."}
	got := refiner.Refine(context.Background(), blocks)

	if got.Summary != "Texto original." {
		t.Errorf("Summary = %q, want original preserved", got.Summary)
	}
}

func TestRefineKeepsDraftOnEmptyReply(t *testing.T) {
	provider := &stubLLM{reply: "   "}
	refiner := NewRefiner(provider, nil)

	blocks := store.ContentBlocks{Summary: "Texto original."}
	got := refiner.Refine(context.Background(), blocks)

	if got.Summary != "Texto original." {
		t.Errorf("Summary = %q, want original preserved", got.Summary)
	}
}

func TestRefineSkipsWithoutProviderOrSummary(t *testing.T) {
	refiner := NewRefiner(nil, nil)
	blocks := store.ContentBlocks{Summary: "Texto original."}
	if got := refiner.Refine(context.Background(), blocks); got.Summary != blocks.Summary {
		t.Errorf("nil provider should pass blocks through, got %q", got.Summary)
	}

	provider := &stubLLM{reply: "qualquer coisa"}
	refiner = NewRefiner(provider, nil)
	if got := refiner.Refine(context.Background(), store.ContentBlocks{}); got.Summary != "" {
		t.Errorf("empty summary should pass through, got %q", got.Summary)
	}
	if provider.calls != 0 {
		t.Errorf("LLM called %d times for empty summary, want 0", provider.calls)
	}
}
