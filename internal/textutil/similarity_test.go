package textutil

import (
	"math"
	"testing"
)

func TestCosineSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
		want float64
	}{
		{"both nil", nil, nil, 0},
		{"a nil", nil, NewFingerprint("hello world"), 0},
		{"b nil", NewFingerprint("hello world"), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("CosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityIdentical(t *testing.T) {
	text := "We are the ones we've been waiting for"
	got := CosineSimilarity(NewFingerprint(text), NewFingerprint(text))
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("CosineSimilarity(identical) = %v, want 1.0", got)
	}
}

func TestCosineSimilarityCompletelyDifferent(t *testing.T) {
	got := TextSimilarity("apple banana cherry", "dog elephant frog")
	if got != 0 {
		t.Errorf("TextSimilarity(different) = %v, want 0", got)
	}
}

func TestCosineSimilarityPartialOverlap(t *testing.T) {
	got := TextSimilarity("the quick brown fox", "the slow brown cat")
	if got <= 0 || got >= 1 {
		t.Errorf("TextSimilarity(partial) = %v, want between 0 and 1", got)
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	a := NewFingerprint("hello world program")
	b := NewFingerprint("world program test")

	if ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a); ab != ba {
		t.Errorf("CosineSimilarity not symmetric: (%v, %v)", ab, ba)
	}
}

func TestTextSimilarityIgnoresSectionTagsAndPunctuation(t *testing.T) {
	local := "[Verse 1]\nDon't let go,\nhold on!\n\n[Chorus]\nHold on"
	remote := "[00:12.50] dont let go hold on\n[00:15.00] hold on"
	if got := TextSimilarity(local, remote); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected formatting-only differences to compare equal, got %v", got)
	}
}

func TestNewFingerprintEmpty(t *testing.T) {
	if fp := NewFingerprint(""); fp != nil {
		t.Error("expected nil for empty text")
	}
	if fp := NewFingerprint("a b c"); fp != nil {
		t.Error("expected nil for text with only single-character tokens")
	}
}

func TestNewFingerprintNormCalculation(t *testing.T) {
	// "hello hello world" -> hello:2, world:1, norm = sqrt(5)
	fp := NewFingerprint("hello hello world")
	if fp == nil {
		t.Fatal("expected fingerprint")
	}
	if math.Abs(fp.norm-math.Sqrt(5)) > 0.0001 {
		t.Errorf("norm = %v, want %v", fp.norm, math.Sqrt(5))
	}
	if fp.TokenCount() != 2 {
		t.Errorf("TokenCount() = %d, want 2", fp.TokenCount())
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "simple words", input: "Hello World", want: []string{"hello", "world"}},
		{name: "filters single characters", input: "a to the fox", want: []string{"to", "the", "fox"}},
		{name: "drops apostrophes", input: "Don't stop", want: []string{"dont", "stop"}},
		{name: "drops section tags", input: "[Chorus] sing it", want: []string{"sing", "it"}},
		{name: "keeps numbers", input: "yellow #5 99", want: []string{"yellow", "99"}},
		{name: "empty string", input: "", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("Tokenize() = %v (len %d), want %v (len %d)", got, len(got), tt.want, len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClosest(t *testing.T) {
	candidates := []string{"lose your mind", "giving tree", "rumi"}
	idx, distance := Closest("loose your mind", candidates)
	if idx != 0 {
		t.Fatalf("unexpected closest index: got %d want 0", idx)
	}
	if distance != 1 {
		t.Fatalf("unexpected distance: got %d want 1", distance)
	}

	if idx, _ := Closest("anything", nil); idx != -1 {
		t.Fatalf("expected -1 for no candidates, got %d", idx)
	}
}

func TestEditSimilarity(t *testing.T) {
	local := "[Verse]\nDon't let go, hold on"
	if got := EditSimilarity(local, "dont let go hold on"); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected identical token text to score 1, got %v", got)
	}
	if got := EditSimilarity(local, ""); got != 0 {
		t.Fatalf("expected 0 for empty input, got %v", got)
	}
	near := EditSimilarity("hold on to the light", "hold on to the night")
	far := EditSimilarity("hold on to the light", "completely different words here")
	if near <= far || near < 0.9 {
		t.Fatalf("expected near text to outscore far text: near=%v far=%v", near, far)
	}
}
