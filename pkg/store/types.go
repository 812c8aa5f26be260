package store

// SourceHit is one retrieval result from the CDC corpus.
// Slices of SourceHit are always kept in search rank order.
type SourceHit struct {
	ID           string  `json:"id"`
	ArticleLabel string  `json:"artigo"`
	LawLabel     string  `json:"lei"`
	URL          string  `json:"url"`
	Text         string  `json:"texto,omitempty"`
	Score        float64 `json:"score"`
}

// NaturalKey identifies the article a hit belongs to: the chunk id when
// present, otherwise the article header line. Hits without either have
// no usable key and are never treated as duplicates.
func (h SourceHit) NaturalKey() string {
	if h.ID != "" {
		return h.ID
	}
	return h.ArticleLabel
}

// LegalBasis is a generated citation record referencing a statute article.
type LegalBasis struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type QuizItem struct {
	Question string `json:"q"`
	Answer   string `json:"a"`
	Ref      string `json:"ref"`
}

type GlossaryItem struct {
	Term       string `json:"term"`
	Definition string `json:"def"`
}

// ContentBlocks holds the named content artifacts produced by the
// drafting and polishing stages.
type ContentBlocks struct {
	Summary    string         `json:"summary"`
	Steps      []string       `json:"steps"`
	LegalBasis []LegalBasis   `json:"legal_basis"`
	Quiz       []QuizItem     `json:"quiz"`
	Glossary   []GlossaryItem `json:"glossary"`
}

// Verdict is the auditor's structured judgment on a generated draft.
// Degraded marks that at least one sub-check fell back to its permissive
// default because the external scorer was unavailable.
type Verdict struct {
	IsValid        bool     `json:"is_valid"`
	AlignmentScore float64  `json:"alignment_score"`
	CitationsValid bool     `json:"citations_valid"`
	IsEducational  bool     `json:"is_educational"`
	Issues         []string `json:"issues"`
	Degraded       bool     `json:"degraded"`
}
