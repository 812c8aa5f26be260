package audit

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"cdc-educa-be/pkg/llm"
	"cdc-educa-be/pkg/store"
)

const alignmentThreshold = 0.7

// Auditor validates generated content before it reaches the user:
// query-response alignment, citation accuracy and educational tone.
// Every LLM-backed check fails open: an unreachable model never blocks
// an answer, it only marks the verdict as degraded.
type Auditor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAuditor(llmProvider llm.LLMProvider, logger *log.Logger) *Auditor {
	if logger == nil {
		logger = log.Default()
	}
	return &Auditor{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Validate runs all checks and aggregates them into one verdict.
func (a *Auditor) Validate(ctx context.Context, query string, blocks store.ContentBlocks, sources []store.SourceHit) store.Verdict {
	verdict := store.Verdict{
		IsValid:        true,
		AlignmentScore: 1.0,
		CitationsValid: true,
		IsEducational:  true,
	}

	score, degraded := a.checkAlignment(ctx, query, blocks.Summary)
	verdict.AlignmentScore = score
	verdict.Degraded = verdict.Degraded || degraded
	if score < alignmentThreshold {
		verdict.IsValid = false
		verdict.Issues = append(verdict.Issues, fmt.Sprintf("Low alignment score: %.2f", score))
	}

	citationsValid, missing := validateCitations(blocks.LegalBasis, sources)
	verdict.CitationsValid = citationsValid
	if !citationsValid {
		verdict.IsValid = false
		issue := "Citations not found in sources"
		if len(missing) > 0 {
			issue = fmt.Sprintf("%s: %s", issue, strings.Join(missing, ", "))
		}
		verdict.Issues = append(verdict.Issues, issue)
	}

	educational, degraded := a.checkEducationalTone(ctx, query, blocks.Summary)
	verdict.IsEducational = educational
	verdict.Degraded = verdict.Degraded || degraded
	if !educational {
		verdict.IsValid = false
		verdict.Issues = append(verdict.Issues, "Content contains personalized legal advice")
	}

	a.logger.Printf("[AUDIT] valid=%t issues=%d degraded=%t", verdict.IsValid, len(verdict.Issues), verdict.Degraded)
	return verdict
}

// checkAlignment scores how well the summary answers the query, 0.0 to
// 1.0. The second return reports whether the check ran degraded.
func (a *Auditor) checkAlignment(ctx context.Context, query, summary string) (float64, bool) {
	if query == "" || summary == "" {
		return 0.0, false
	}
	if a.llmProvider == nil {
		a.logger.Printf("[AUDIT] No LLM available, skipping alignment check")
		return 1.0, true
	}

	prompt := fmt.Sprintf(`Avalie se a resposta está alinhada com a pergunta do usuário.

Pergunta: "%s"

Resposta: "%s"

Retorne apenas um número de 0.0 a 1.0 indicando o alinhamento:
- 1.0 = perfeitamente alinhado
- 0.7-0.9 = bem alinhado
- 0.4-0.6 = parcialmente alinhado
- 0.0-0.3 = não alinhado

Responda apenas com o número.`, query, summary)

	reply, err := a.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a quality evaluator."},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0), llm.WithMaxTokens(10))
	if err != nil {
		a.logger.Printf("[AUDIT] Alignment check failed, assuming valid: %v", err)
		return 1.0, true
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		a.logger.Printf("[AUDIT] Alignment reply not a number (%q), assuming valid", reply)
		return 1.0, true
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, false
}

var articleNumberRe = regexp.MustCompile(`(?i)\bArt\.?[\s-]*(\d+)`)

// extractArticleNumbers pulls article numbers out of a label, so
// "Art. 49", "Art.49 - Direito de arrependimento" and the chunk slug
// "art-49" all yield "49".
func extractArticleNumbers(label string) []string {
	var numbers []string
	for _, m := range articleNumberRe.FindAllStringSubmatch(label, -1) {
		numbers = append(numbers, m[1])
	}
	return numbers
}

// validateCitations checks that every article cited in the legal basis
// was actually retrieved. The same extraction runs on both sides, so
// label formatting differences cannot cause false mismatches. No
// citations passes vacuously; citations without any sources fail.
func validateCitations(legalBasis []store.LegalBasis, sources []store.SourceHit) (bool, []string) {
	cited := make(map[string]bool)
	for _, citation := range legalBasis {
		for _, n := range extractArticleNumbers(citation.Label) {
			cited[n] = true
		}
	}
	if len(cited) == 0 {
		return true, nil
	}
	if len(sources) == 0 {
		return false, nil
	}

	available := make(map[string]bool)
	for _, src := range sources {
		for _, n := range extractArticleNumbers(src.ArticleLabel) {
			available[n] = true
		}
		for _, n := range extractArticleNumbers(src.ID) {
			available[n] = true
		}
	}

	var missing []string
	for n := range cited {
		if !available[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return false, missing
	}
	return true, nil
}

var advicePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bvocê deve processar\b`),
	regexp.MustCompile(`\brecomendo que (processe|acione)\b`),
	regexp.MustCompile(`\bmeu conselho é\b`),
	regexp.MustCompile(`\baconselho (você |que )?a?\b`),
	regexp.MustCompile(`\bentre com processo\b`),
}

// checkEducationalTone distinguishes general rights education from
// personalized legal advice. High-risk phrasings are caught by regex
// before spending an LLM call.
func (a *Auditor) checkEducationalTone(ctx context.Context, query, summary string) (bool, bool) {
	if summary == "" {
		return true, false
	}

	lower := strings.ToLower(summary)
	for _, pattern := range advicePatterns {
		if pattern.MatchString(lower) {
			a.logger.Printf("[AUDIT] Detected advice pattern: %s", pattern)
			return false, false
		}
	}

	if a.llmProvider == nil {
		return true, true
	}

	prompt := fmt.Sprintf(`Classifique o conteúdo como "educational" ou "advice".

Pergunta: "%s"

Resposta: "%s"

Educational: Explica direitos gerais, procedimentos, leis (OK)
Advice: Recomenda ações específicas para o caso do usuário (NÃO OK)

Responda apenas: educational ou advice`, query, summary)

	reply, err := a.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: "You are a legal compliance classifier."},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(0), llm.WithMaxTokens(10))
	if err != nil {
		a.logger.Printf("[AUDIT] Tone check failed, assuming educational: %v", err)
		return true, true
	}

	classification := strings.ToLower(strings.TrimSpace(reply))
	if !strings.Contains(classification, "educational") {
		a.logger.Printf("[AUDIT] Content classified as advice: %s", classification)
		return false, false
	}
	return true, false
}
