// Package quality measures slide density: word count, list items and the
// longest paragraph.
package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// Thresholds above which a slide draws a warning.
const (
	MaxWords          = 140
	MaxBullets        = 8
	MaxParagraphWords = 55
)

var (
	wordRe   = regexp.MustCompile(`[A-Za-z0-9][A-Za-z0-9'./-]*`)
	bulletRe = regexp.MustCompile(`(?m)^\s*(?:[-*+]\s+|\d+\.\s+)`)
	tagRe    = regexp.MustCompile(`<[^>]+>`)
)

// Metrics are the measurements for one slide.
type Metrics struct {
	Words             int `json:"words"`
	Bullets           int `json:"bullets"`
	MaxParagraphWords int `json:"max_paragraph_words"`
}

// Analyze measures a single slide's inner text. Markup tags are replaced by
// a space before words are counted; list markers are counted on the raw text.
func Analyze(slide string) Metrics {
	plain := StripTags(slide)
	return Metrics{
		Words:             CountWords(plain),
		Bullets:           len(bulletRe.FindAllStringIndex(slide, -1)),
		MaxParagraphWords: maxParagraphWords(plain),
	}
}

// StripTags replaces every <...> run with a single space.
func StripTags(text string) string {
	return tagRe.ReplaceAllString(text, " ")
}

// CountWords counts word tokens: an ASCII letter or digit followed by any
// letters, digits, apostrophes, dots, slashes or hyphens.
func CountWords(text string) int {
	return len(wordRe.FindAllStringIndex(text, -1))
}

func maxParagraphWords(plain string) int {
	best := 0
	for _, chunk := range strings.Split(plain, "\n\n") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		best = max(best, CountWords(chunk))
	}
	return best
}

// Warnings renders one message per exceeded threshold. index is 1-based.
func (m Metrics) Warnings(index int) []string {
	var out []string
	if m.Words > MaxWords {
		out = append(out, fmt.Sprintf("Slide %d has %d words (threshold: %d).", index, m.Words, MaxWords))
	}
	if m.Bullets > MaxBullets {
		out = append(out, fmt.Sprintf("Slide %d has %d bullets/list items (threshold: %d).", index, m.Bullets, MaxBullets))
	}
	if m.MaxParagraphWords > MaxParagraphWords {
		out = append(out, fmt.Sprintf("Slide %d has a paragraph with %d words (threshold: %d).", index, m.MaxParagraphWords, MaxParagraphWords))
	}
	return out
}
