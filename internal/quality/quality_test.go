package quality

import (
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "w" + strings.Repeat("x", i%3)
	}
	return strings.Join(parts, " ")
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello world", 2},
		{"don't stop v1.2 a/b e-mail", 5},
		{"-- ... !!!", 0},
		{"'quoted' word", 2},
		{"naïve café", 3},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestAnalyze_TagsAreSeparators(t *testing.T) {
	m := Analyze(`<h1>Title</h1><p>two<br/>words</p>`)
	if m.Words != 3 {
		t.Errorf("Words = %d, want 3", m.Words)
	}
}

func TestAnalyze_Bullets(t *testing.T) {
	slide := "\n- one\n* two\n  + three\n1. four\n10. five\n-not a bullet\n"
	m := Analyze(slide)
	if m.Bullets != 5 {
		t.Errorf("Bullets = %d, want 5", m.Bullets)
	}
}

func TestAnalyze_Paragraphs(t *testing.T) {
	slide := words(10) + "\n\n   \n\n" + words(30) + "\n\n" + words(5)
	m := Analyze(slide)
	if m.MaxParagraphWords != 30 {
		t.Errorf("MaxParagraphWords = %d, want 30", m.MaxParagraphWords)
	}
	if m.Words != 45 {
		t.Errorf("Words = %d, want 45", m.Words)
	}
}

func TestWarnings(t *testing.T) {
	if got := (Metrics{Words: 140, Bullets: 8, MaxParagraphWords: 55}).Warnings(1); len(got) != 0 {
		t.Errorf("at-threshold metrics should not warn, got %v", got)
	}

	got := Metrics{Words: 141, Bullets: 9, MaxParagraphWords: 56}.Warnings(3)
	want := []string{
		"Slide 3 has 141 words (threshold: 140).",
		"Slide 3 has 9 bullets/list items (threshold: 8).",
		"Slide 3 has a paragraph with 56 words (threshold: 55).",
	}
	if len(got) != len(want) {
		t.Fatalf("Warnings = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("warning[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
