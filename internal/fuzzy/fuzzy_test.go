package fuzzy

import "testing"

func TestSimilarityIdentical(t *testing.T) {
	if s := Similarity("hello", "hello"); s != 1 {
		t.Fatalf("got %v, want 1", s)
	}
}

func TestSimilarityClose(t *testing.T) {
	s := Similarity("comand", "command")
	if s <= 0.5 {
		t.Fatalf("expected high similarity for near-typo, got %v", s)
	}
}

func TestSimilarityDistant(t *testing.T) {
	s := Similarity("xyz", "command")
	if s >= 0.5 {
		t.Fatalf("expected low similarity for unrelated strings, got %v", s)
	}
}

func TestBestMatch(t *testing.T) {
	best, _, ok := BestMatch("pus", []string{"push", "pull", "commit"})
	if !ok || best != "push" {
		t.Fatalf("got best=%q ok=%v, want push", best, ok)
	}
}

func TestBestMatchEmpty(t *testing.T) {
	if _, _, ok := BestMatch("x", nil); ok {
		t.Fatalf("expected ok=false for no candidates")
	}
}
