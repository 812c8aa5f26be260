package guardrail

import (
	"strings"
	"testing"
)

func TestFindPIIChecksums(t *testing.T) {
	guard := NewInputGuard(nil)

	tests := []struct {
		name         string
		text         string
		wantKind     PIIKind
		wantSeverity Severity
		wantCount    int
	}{
		{
			name:         "valid formatted CPF",
			text:         "Meu CPF é 123.456.789-09, o que faço?",
			wantKind:     KindCPF,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:      "CPF with corrupted check digit",
			text:      "Meu CPF é 123.456.789-08",
			wantCount: 0,
		},
		{
			name:      "CPF with all digits identical",
			text:      "CPF 111.111.111-11 aqui",
			wantCount: 0,
		},
		{
			name:         "valid formatted CNPJ",
			text:         "A empresa 11.222.333/0001-81 não entregou",
			wantKind:     KindCNPJ,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:      "CNPJ with corrupted check digit",
			text:      "A empresa 11.222.333/0001-82 não entregou",
			wantCount: 0,
		},
		{
			name:         "bare 11-digit run with valid CPF checksum",
			text:         "documento 12345678909 anexado",
			wantKind:     KindNumeric11,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:      "bare 11-digit run failing checksum is silently dropped",
			text:      "documento 12345678900 anexado",
			wantCount: 0,
		},
		{
			name:         "bare 14-digit run with valid CNPJ checksum",
			text:         "cadastro 11222333000181 ativo",
			wantKind:     KindNumeric14,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:         "email",
			text:         "me responda em fulano@example.com por favor",
			wantKind:     KindEmail,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:         "phone",
			text:         "liguem no 55 11 98765-4321",
			wantKind:     KindPhone,
			wantSeverity: SeverityBlock,
			wantCount:    1,
		},
		{
			name:         "case number warns but never blocks",
			text:         "processo 1234567-89.2023.8.26.0100 em andamento",
			wantKind:     KindCaseNumber,
			wantSeverity: SeverityWarn,
			wantCount:    1,
		},
		{
			name:      "empty text",
			text:      "",
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := guard.FindPII(tt.text)
			if len(findings) != tt.wantCount {
				t.Fatalf("FindPII(%q) = %d findings, want %d: %+v",
					tt.text, len(findings), tt.wantCount, findings)
			}
			if tt.wantCount == 0 {
				return
			}
			if findings[0].Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", findings[0].Kind, tt.wantKind)
			}
			if findings[0].Severity != tt.wantSeverity {
				t.Errorf("Severity = %s, want %s", findings[0].Severity, tt.wantSeverity)
			}
		})
	}
}

func TestFindPIISpanOffsets(t *testing.T) {
	guard := NewInputGuard(nil)
	text := "CPF: 123.456.789-09"

	findings := guard.FindPII(text)
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if got := text[findings[0].Start:findings[0].End]; got != "123.456.789-09" {
		t.Errorf("span = %q, want %q", got, "123.456.789-09")
	}
}

func TestMaskPIISupersetOfBlocking(t *testing.T) {
	guard := NewInputGuard(nil)

	// Corrupted check digit: no blocking finding, but the span must
	// still be masked by MaskPII.
	text := "Meu CPF é 123.456.789-08"

	if guard.DetectPII(text) {
		t.Fatal("corrupted CPF should not be a finding")
	}

	masked := guard.MaskPII(text)
	if strings.Contains(masked, "123.456.789-08") {
		t.Errorf("MaskPII left the pattern visible: %q", masked)
	}
	if !strings.Contains(masked, strings.Repeat("*", len("123.456.789-08"))) {
		t.Errorf("MaskPII should replace the span with equal-length mask chars: %q", masked)
	}
	if len(masked) != len(text) {
		t.Errorf("masked length = %d, want %d", len(masked), len(text))
	}
}

func TestAnalyze(t *testing.T) {
	guard := NewInputGuard(nil)

	t.Run("blocking finding masks text", func(t *testing.T) {
		text := "Meu CPF é 123.456.789-09, o que faço?"
		analysis := guard.Analyze(text)

		if !analysis.HasPII {
			t.Error("HasPII = false, want true")
		}
		if len(analysis.Blocked) != 1 {
			t.Errorf("Blocked = %d, want 1", len(analysis.Blocked))
		}
		if analysis.MaskedText == text {
			t.Error("MaskedText should differ from original when blocked")
		}
	})

	t.Run("masked text unchanged without blocking findings", func(t *testing.T) {
		text := "processo 1234567-89.2023.8.26.0100 em andamento"
		analysis := guard.Analyze(text)

		if analysis.HasPII {
			t.Error("case number must not set HasPII")
		}
		if !analysis.HasWarnings {
			t.Error("HasWarnings = false, want true")
		}
		if analysis.MaskedText != text {
			t.Errorf("MaskedText = %q, want original text", analysis.MaskedText)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		analysis := guard.Analyze("")
		if analysis.HasPII || analysis.HasWarnings || len(analysis.Findings) != 0 {
			t.Errorf("empty text should yield an empty analysis: %+v", analysis)
		}
	})
}

func TestOverlappingKindsAllReported(t *testing.T) {
	guard := NewInputGuard(nil)

	// Email and phone in the same sentence: both reported independently.
	text := "contato: fulano@example.com ou 55 11 98765-4321"
	findings := guard.FindPII(text)
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}
}
