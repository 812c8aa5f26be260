package search

import (
	"reflect"
	"testing"

	"cdc-educa-be/pkg/store"
)

func TestClampTopK(t *testing.T) {
	tests := []struct {
		name string
		k    int
		want int
	}{
		{"zero falls back to default", 0, 5},
		{"negative clamps to one", -3, 1},
		{"in range passes through", 7, 7},
		{"above max clamps to max", 50, 10},
		{"exactly max", 10, 10},
		{"exactly one", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampTopK(tt.k, 5, 10); got != tt.want {
				t.Errorf("ClampTopK(%d) = %d, want %d", tt.k, got, tt.want)
			}
		})
	}
}

func hit(id, artigo string, score float64) store.SourceHit {
	return store.SourceHit{ID: id, ArticleLabel: artigo, Score: score}
}

func TestShapeDeduplicates(t *testing.T) {
	hits := []store.SourceHit{
		hit("art-49", "Art. 49", 0.91),
		hit("art-49", "Art. 49", 0.88),
		hit("art-18", "Art. 18", 0.80),
	}

	shaped := Shape(hits, 10)
	if len(shaped) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(shaped), shaped)
	}
	if shaped[0].Score != 0.91 {
		t.Errorf("first occurrence must win, got score %v", shaped[0].Score)
	}
	if shaped[1].ID != "art-18" {
		t.Errorf("ranking order not preserved: %+v", shaped)
	}
}

func TestShapeFallsBackToArticleLabel(t *testing.T) {
	hits := []store.SourceHit{
		{ArticleLabel: "Art. 49", Score: 0.9},
		{ArticleLabel: "Art. 49", Score: 0.8},
	}
	shaped := Shape(hits, 10)
	if len(shaped) != 1 {
		t.Fatalf("dedup by article label failed, len = %d", len(shaped))
	}
}

func TestShapeKeepsKeylessHits(t *testing.T) {
	hits := []store.SourceHit{
		{Text: "texto a", Score: 0.9},
		{Text: "texto b", Score: 0.8},
		{Text: "texto c", Score: 0.7},
	}
	shaped := Shape(hits, 10)
	if len(shaped) != 3 {
		t.Fatalf("keyless hits must never collide, len = %d", len(shaped))
	}
}

func TestShapeRespectsLimit(t *testing.T) {
	hits := []store.SourceHit{
		hit("a", "", 0.9),
		hit("b", "", 0.8),
		hit("c", "", 0.7),
		hit("d", "", 0.6),
	}
	shaped := Shape(hits, 2)
	if len(shaped) != 2 {
		t.Fatalf("len = %d, want 2", len(shaped))
	}
	if shaped[0].ID != "a" || shaped[1].ID != "b" {
		t.Errorf("order = %+v", shaped)
	}

	// Limit below one still yields at least one hit
	if got := Shape(hits, 0); len(got) != 1 {
		t.Errorf("limit 0 should clamp to 1, got %d", len(got))
	}
}

func TestShapeIdempotent(t *testing.T) {
	hits := []store.SourceHit{
		hit("art-49", "Art. 49", 0.91),
		hit("art-49", "Art. 49", 0.88),
		hit("art-18", "Art. 18", 0.80),
	}

	once := Shape(hits, 5)
	twice := Shape(once, 5)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Shape not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestShapeEmpty(t *testing.T) {
	if got := Shape(nil, 5); len(got) != 0 {
		t.Errorf("Shape(nil) = %+v, want empty", got)
	}
}
