package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"cdc-educa-be/pkg/llm"
	"cdc-educa-be/pkg/store"
)

// Generator creates educational content blocks grounded on retrieved
// articles. The LLM drafts summary, steps, quiz and glossary; the legal
// basis is always rebuilt from the retrieved sources so citations never
// point outside what retrieval returned.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	if logger == nil {
		logger = log.Default()
	}
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type draftPayload struct {
	Summary  string               `json:"summary"`
	Steps    []string             `json:"steps"`
	Quiz     []store.QuizItem     `json:"quiz"`
	Glossary []store.GlossaryItem `json:"glossary"`
}

// Generate produces content blocks for the query. Falls back to the
// static template when the LLM is unavailable or returns garbage, so a
// draft always exists.
func (g *Generator) Generate(ctx context.Context, query string, sources []store.SourceHit, k int) store.ContentBlocks {
	legalBasis := legalBasisFromSources(sources, k)

	if g.llmProvider == nil {
		return fallbackBlocks(legalBasis)
	}

	prompt := g.buildPrompt(query, sources)
	reply, err := g.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are an educational writer specialized in Brazilian consumer law. Answer in Portuguese."},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0.3))
	if err != nil {
		g.logger.Printf("[DRAFT] LLM generation failed, using fallback blocks: %v", err)
		return fallbackBlocks(legalBasis)
	}

	var payload draftPayload
	if err := json.Unmarshal([]byte(stripJSONFence(reply)), &payload); err != nil {
		g.logger.Printf("[DRAFT] LLM returned unparseable JSON, using fallback blocks: %v", err)
		return fallbackBlocks(legalBasis)
	}
	if payload.Summary == "" {
		g.logger.Printf("[DRAFT] LLM draft missing summary, using fallback blocks")
		return fallbackBlocks(legalBasis)
	}

	blocks := store.ContentBlocks{
		Summary:    payload.Summary,
		Steps:      payload.Steps,
		LegalBasis: legalBasis,
		Quiz:       payload.Quiz,
		Glossary:   payload.Glossary,
	}
	g.logger.Printf("[DRAFT] Generated blocks: %d steps, %d citations, %d quiz items",
		len(blocks.Steps), len(blocks.LegalBasis), len(blocks.Quiz))
	return blocks
}

func (g *Generator) buildPrompt(query string, sources []store.SourceHit) string {
	var prompt strings.Builder

	prompt.WriteString("<sources>\n")
	for i, src := range sources {
		label := src.ArticleLabel
		if label == "" {
			label = src.ID
		}
		prompt.WriteString(fmt.Sprintf("%d. %s (Lei %s)\n%s\n\n", i+1, label, src.LawLabel, src.Text))
	}
	prompt.WriteString("</sources>\n\n")

	prompt.WriteString("<task>\n")
	prompt.WriteString("Using ONLY the sources above, write educational content about the user's question.\n")
	prompt.WriteString("Explain general rights and procedures. Never give personalized legal advice.\n")
	prompt.WriteString("Return a single JSON object with the keys:\n")
	prompt.WriteString(`  "summary": short paragraph readable in 30 seconds` + "\n")
	prompt.WriteString(`  "steps": array of practical steps the reader can take` + "\n")
	prompt.WriteString(`  "quiz": array of {"q", "a", "ref"} items` + "\n")
	prompt.WriteString(`  "glossary": array of {"term", "def"} items` + "\n")
	prompt.WriteString("Respond with JSON only.\n</task>\n\n")
	prompt.WriteString("Question: " + query)

	return prompt.String()
}

// stripJSONFence removes a markdown code fence around a JSON reply.
// Models frequently wrap JSON in ```json blocks even when told not to.
func stripJSONFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func legalBasisFromSources(sources []store.SourceHit, k int) []store.LegalBasis {
	if k < 1 || k > len(sources) {
		k = len(sources)
	}
	basis := make([]store.LegalBasis, 0, k)
	for _, src := range sources[:k] {
		label := src.ArticleLabel
		if label == "" {
			label = src.ID
		}
		if label == "" {
			label = "referência"
		}
		basis = append(basis, store.LegalBasis{
			Label: label,
			URL:   src.URL,
		})
	}
	return basis
}

// fallbackBlocks is the static template used when the LLM cannot draft.
// Content mirrors the standing guidance for consumer complaints.
func fallbackBlocks(legalBasis []store.LegalBasis) store.ContentBlocks {
	return store.ContentBlocks{
		Summary: "Resumo em 30s: seus direitos do consumidor conforme o CDC e guias oficiais.",
		Steps: []string{
			"Organize provas (nota fiscal, conversas, fotos)",
			"Solicite solução formal ao fornecedor",
			"Se não resolver, registre reclamação no PROCON ou Consumidor.gov.br",
		},
		LegalBasis: legalBasis,
		Quiz: []store.QuizItem{
			{
				Question: "Em quantos dias posso me arrepender de compra online?",
				Answer:   "7 dias",
				Ref:      "CDC Art. 49",
			},
		},
		Glossary: []store.GlossaryItem{
			{
				Term:       "Vício do produto",
				Definition: "Defeito ou falha de qualidade que torna o produto impróprio ou diminui seu valor.",
			},
		},
	}
}
