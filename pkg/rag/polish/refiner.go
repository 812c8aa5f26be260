package polish

import (
	"context"
	"log"
	"strings"

	"cdc-educa-be/pkg/llm"
	"cdc-educa-be/pkg/store"
)

// Refiner rewrites the draft summary for readability. It never fails a
// run: when the LLM is unavailable the blocks pass through unchanged.
type Refiner struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRefiner(llmProvider llm.LLMProvider, logger *log.Logger) *Refiner {
	if logger == nil {
		logger = log.Default()
	}
	return &Refiner{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Refine improves the pedagogical quality of the summary text.
func (r *Refiner) Refine(ctx context.Context, blocks store.ContentBlocks) store.ContentBlocks {
	if r.llmProvider == nil || blocks.Summary == "" {
		return blocks
	}

	prompt := "Reescreva o texto abaixo para um leitor leigo: frases curtas, " +
		"linguagem simples, tom educativo. Mantenha o significado e nunca " +
		"acrescente recomendações pessoais. Responda apenas com o texto reescrito.\n\n" +
		blocks.Summary

	reply, err := r.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are an editor who simplifies legal text for lay readers. Answer in Portuguese."},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0.2))
	if err != nil {
		r.logger.Printf("[POLISH] Readability pass failed, keeping draft summary: %v", err)
		return blocks
	}

	refined := strings.TrimSpace(reply)
	if refined == "" {
		return blocks
	}

	blocks.Summary = refined
	r.logger.Printf("[POLISH] Summary refined (%d chars)", len(refined))
	return blocks
}
