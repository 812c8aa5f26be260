package guardrail

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"cdc-educa-be/pkg/llm"
)

type Domain string

const (
	DomainCDC      Domain = "cdc"
	DomainOtherLaw Domain = "other_law"
	DomainNotLaw   Domain = "not_law"
)

// ScopeAnalysis classifies a message as consumer law, other legal
// domain, or not legal at all.
type ScopeAnalysis struct {
	IsLegal    bool   `json:"is_legal"`
	IsConsumer bool   `json:"is_consumer"`
	Domain     Domain `json:"domain"`
	Reason     string `json:"reason"`
	Source     string `json:"source"` // "llm" or "heuristic"
}

// ScopeClassifier decides whether a query is in scope. It tries the LLM
// first and falls back to a keyword heuristic when the call fails.
type ScopeClassifier struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewScopeClassifier(llmProvider llm.LLMProvider, logger *log.Logger) *ScopeClassifier {
	if logger == nil {
		logger = log.Default()
	}
	return &ScopeClassifier{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// ClassifyWithLLM asks the model for exactly one label.
func (s *ScopeClassifier) ClassifyWithLLM(ctx context.Context, text string) (Domain, string, error) {
	if s.llmProvider == nil {
		return DomainNotLaw, "", fmt.Errorf("no llm provider configured")
	}

	prompt := "Classify the user message in exactly one of the labels: cdc | other_law | not_law. " +
		"Respond only with the label, without explanations.\n\nMessage: " + text

	reply, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a legal classifier."},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0))
	if err != nil {
		return DomainNotLaw, "", err
	}

	label := strings.ToLower(strings.TrimSpace(reply))
	var domain Domain
	switch label {
	case "cdc":
		domain = DomainCDC
	case "other_law":
		domain = DomainOtherLaw
	default:
		domain = DomainNotLaw
	}
	return domain, fmt.Sprintf("classified_by_llm:%s", label), nil
}

var consumerKeywords = []string{
	"consumidor", "cdc", "produto", "compra", "comprei", "loja",
	"garantia", "defeito", "vício", "troca", "devolução", "devolver",
	"arrependimento", "fornecedor", "cobrança indevida", "procon",
	"propaganda enganosa", "serviço contratado", "nota fiscal",
}

var legalKeywords = []string{
	"direito", "lei", "processo", "justiça", "advogado", "juiz",
	"contrato", "trabalhista", "pensão", "aluguel", "inquilino",
	"crime", "multa", "indenização", "herança", "divórcio",
}

// classifyHeuristic is the offline fallback: keyword presence decides
// the domain, checking consumer terms before generic legal terms.
func classifyHeuristic(text string) (Domain, string) {
	lower := strings.ToLower(text)
	for _, kw := range consumerKeywords {
		if strings.Contains(lower, kw) {
			return DomainCDC, fmt.Sprintf("heuristic:consumer_keyword(%s)", kw)
		}
	}
	for _, kw := range legalKeywords {
		if strings.Contains(lower, kw) {
			return DomainOtherLaw, fmt.Sprintf("heuristic:legal_keyword(%s)", kw)
		}
	}
	return DomainNotLaw, "heuristic:no_legal_indicator"
}

// Analyze classifies text, falling back to the heuristic when the LLM
// call fails. The pipeline treats the returned domain as authoritative.
func (s *ScopeClassifier) Analyze(ctx context.Context, text string) ScopeAnalysis {
	start := time.Now()

	domain, reason, err := s.ClassifyWithLLM(ctx, text)
	source := "llm"
	if err != nil {
		s.logger.Printf("[GUARD] Scope LLM classification failed, using heuristic: %v", err)
		domain, reason = classifyHeuristic(text)
		source = "heuristic"
	}

	s.logger.Printf("[GUARD] Scope analysis: %s (%s)", domain, time.Since(start))

	return ScopeAnalysis{
		IsLegal:    domain == DomainCDC || domain == DomainOtherLaw,
		IsConsumer: domain == DomainCDC,
		Domain:     domain,
		Reason:     fmt.Sprintf("%s (source=%s)", reason, source),
		Source:     source,
	}
}
