package guardrail

import (
	"log"
	"regexp"
	"strings"
	"time"
)

type PIIKind string

const (
	KindCPF        PIIKind = "cpf"
	KindCNPJ       PIIKind = "cnpj"
	KindNumeric11  PIIKind = "numeric_11"
	KindNumeric14  PIIKind = "numeric_14"
	KindEmail      PIIKind = "email"
	KindPhone      PIIKind = "phone"
	KindCaseNumber PIIKind = "processo"
)

type Severity string

const (
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
)

// Finding is one detected identifier. Start/End are byte offsets into
// the analyzed text.
type Finding struct {
	Kind     PIIKind  `json:"type"`
	Value    string   `json:"value"`
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Severity Severity `json:"severity"`
}

// Analysis is the full guardrail verdict for one text.
type Analysis struct {
	HasPII      bool      `json:"has_pii"`
	HasWarnings bool      `json:"has_warnings"`
	Findings    []Finding `json:"findings"`
	Blocked     []Finding `json:"blocked"`
	Warnings    []Finding `json:"warnings"`
	MaskedText  string    `json:"masked_text"`
}

type piiPattern struct {
	kind PIIKind
	re   *regexp.Regexp
}

// InputGuard detects and masks sensitive identifiers in user text.
// Regex-only, deterministic: CPF/CNPJ checksums are validated before a
// match counts as a finding, and processo judicial (CNJ format) is a
// warning rather than a block.
type InputGuard struct {
	patterns   []piiPattern
	blockKinds map[PIIKind]bool
	logger     *log.Logger
}

const maskChar = "*"

func NewInputGuard(logger *log.Logger) *InputGuard {
	if logger == nil {
		logger = log.Default()
	}
	return &InputGuard{
		patterns: []piiPattern{
			{KindCPF, regexp.MustCompile(`\b\d{3}\.\d{3}\.\d{3}-\d{2}\b`)},
			{KindCNPJ, regexp.MustCompile(`\b\d{2}\.\d{3}\.\d{3}/\d{4}-\d{2}\b`)},
			{KindNumeric11, regexp.MustCompile(`\b\d{11}\b`)},
			{KindNumeric14, regexp.MustCompile(`\b\d{14}\b`)},
			{KindEmail, regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)},
			{KindPhone, regexp.MustCompile(`\b\+?\d{2}\s?\(?\d{2}\)?\s?\d{4,5}-?\d{4}\b`)},
			{KindCaseNumber, regexp.MustCompile(`\b\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}\b`)},
		},
		blockKinds: map[PIIKind]bool{
			KindCPF:       true,
			KindCNPJ:      true,
			KindEmail:     true,
			KindPhone:     true,
			KindNumeric11: true,
			KindNumeric14: true,
		},
		logger: logger,
	}
}

var nonDigit = regexp.MustCompile(`\D`)

// validateCPF checks the two CPF check digits (Brazilian tax ID).
func validateCPF(cpf string) bool {
	digits := nonDigit.ReplaceAllString(cpf, "")
	if len(digits) != 11 || allSameDigit(digits) {
		return false
	}
	s := 0
	for i := 0; i < 9; i++ {
		s += int(digits[i]-'0') * (10 - i)
	}
	d1 := (s * 10 % 11) % 10
	if d1 != int(digits[9]-'0') {
		return false
	}
	s = 0
	for i := 0; i < 10; i++ {
		s += int(digits[i]-'0') * (11 - i)
	}
	d2 := (s * 10 % 11) % 10
	return d2 == int(digits[10]-'0')
}

// validateCNPJ checks the two CNPJ check digits (Brazilian company ID).
func validateCNPJ(cnpj string) bool {
	digits := nonDigit.ReplaceAllString(cnpj, "")
	if len(digits) != 14 {
		return false
	}
	weights1 := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	s := 0
	for i, w := range weights1 {
		s += int(digits[i]-'0') * w
	}
	d1 := s % 11
	if d1 < 2 {
		d1 = 0
	} else {
		d1 = 11 - d1
	}
	if d1 != int(digits[12]-'0') {
		return false
	}
	weights2 := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	s = 0
	for i, w := range weights2 {
		s += int(digits[i]-'0') * w
	}
	d2 := s % 11
	if d2 < 2 {
		d2 = 0
	} else {
		d2 = 11 - d2
	}
	return d2 == int(digits[13]-'0')
}

func allSameDigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}

// FindPII returns all validated findings in text, in pattern order.
// Bare digit runs that fail the CPF/CNPJ checksum are silently dropped.
// Overlapping matches across different kinds are all reported.
func (g *InputGuard) FindPII(text string) []Finding {
	var findings []Finding
	for _, p := range g.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			valid := true
			switch p.kind {
			case KindCPF, KindNumeric11:
				valid = validateCPF(value)
			case KindCNPJ, KindNumeric14:
				valid = validateCNPJ(value)
			}
			if !valid {
				continue
			}
			severity := SeverityWarn
			if g.blockKinds[p.kind] {
				severity = SeverityBlock
			}
			findings = append(findings, Finding{
				Kind:     p.kind,
				Value:    value,
				Start:    loc[0],
				End:      loc[1],
				Severity: severity,
			})
		}
	}
	return findings
}

func (g *InputGuard) DetectPII(text string) bool {
	return len(g.FindPII(text)) > 0
}

// MaskPII replaces every regex-matched span with mask characters of
// equal length. Masking is deliberately more permissive than blocking:
// spans that failed checksum validation are masked too, so a pattern
// that merely failed checksum never leaks.
func (g *InputGuard) MaskPII(text string) string {
	masked := text
	for _, p := range g.patterns {
		masked = p.re.ReplaceAllStringFunc(masked, func(m string) string {
			return strings.Repeat(maskChar, len(m))
		})
	}
	return masked
}

// Analyze runs detection and masking over text. Empty text yields no
// findings. MaskedText equals the input whenever nothing blocked.
func (g *InputGuard) Analyze(text string) Analysis {
	start := time.Now()

	findings := g.FindPII(text)
	var blocked, warnings []Finding
	for _, f := range findings {
		if f.Severity == SeverityBlock {
			blocked = append(blocked, f)
		} else {
			warnings = append(warnings, f)
		}
	}

	maskedText := text
	if len(blocked) > 0 {
		maskedText = g.MaskPII(text)
	}

	g.logger.Printf("[GUARD] InputGuard analyze: blocked=%d warnings=%d elapsed=%s",
		len(blocked), len(warnings), time.Since(start))

	return Analysis{
		HasPII:      len(blocked) > 0,
		HasWarnings: len(warnings) > 0,
		Findings:    findings,
		Blocked:     blocked,
		Warnings:    warnings,
		MaskedText:  maskedText,
	}
}
