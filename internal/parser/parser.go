// Package parser recognizes the structure of a deck page: the frontmatter
// block, slide sections and link targets. It works on text patterns only
// and never builds a Markdown or JSX tree.
package parser

import (
	"regexp"
	"strings"
)

// Recognizers shared with the validation and quality packages.
var (
	FrontmatterFence = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*(?:\n|$)`)
	FrontmatterLine  = regexp.MustCompile(`^\s*([A-Za-z0-9_-]+)\s*:\s*(.*?)\s*$`)
	SlideStart       = regexp.MustCompile(`(?i)<section\s+className=["']slide["']\s*>`)
	SlideEnd         = regexp.MustCompile(`(?i)</section\s*>`)
	MarkdownLink     = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)|\[[^\]]*\]\(([^)]+)\)`)
	AttrLink         = regexp.MustCompile(`(?:src|href|poster)\s*=\s*["']([^"']+)["']`)
	ImportExport     = regexp.MustCompile(`(?m)^\s*(import|export)\s+`)
	UseClient        = regexp.MustCompile(`(?m)^\s*["']use client["']\s*;?\s*$`)
)

// Document is a page split into its frontmatter and the remaining body.
// Frontmatter is nil when the page has no fenced block at all.
type Document struct {
	Frontmatter map[string]string
	Body        string
}

// HasFrontmatter reports whether a fenced block opened the page.
func (d Document) HasFrontmatter() bool { return d.Frontmatter != nil }

// Get returns the trimmed value for key; missing keys read as "".
func (d Document) Get(key string) string {
	return strings.TrimSpace(d.Frontmatter[key])
}

// Parse splits source into frontmatter and body. Keys are lower-cased.
// Blank lines, "#" comments and anything that is not a "key: value" pair
// are ignored; a later duplicate key wins.
func Parse(source string) Document {
	loc := FrontmatterFence.FindStringSubmatchIndex(source)
	if loc == nil {
		return Document{Body: source}
	}

	block := source[loc[2]:loc[3]]
	values := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := FrontmatterLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		values[strings.ToLower(m[1])] = unquote(m[2])
	}
	return Document{Frontmatter: values, Body: source[loc[1]:]}
}

// unquote strips one matching pair of surrounding quotes and the simple
// escapes for backslash and that quote character.
func unquote(raw string) string {
	v := strings.TrimSpace(raw)
	if len(v) >= 2 {
		q := v[0]
		if (q == '"' || q == '\'') && v[len(v)-1] == q {
			inner := v[1 : len(v)-1]
			inner = strings.ReplaceAll(inner, `\\`, `\`)
			inner = strings.ReplaceAll(inner, `\`+string(q), string(q))
			return strings.TrimSpace(inner)
		}
	}
	return v
}

// SlideCount counts slide openers anywhere in source, frontmatter included.
func SlideCount(source string) int {
	return len(SlideStart.FindAllStringIndex(source, -1))
}

// Slides returns the inner text of every slide in body, in document order.
// A slide ends at the first closing tag after its opener when that tag comes
// before the next opener; otherwise it runs to the next opener or the end.
func Slides(body string) []string {
	starts := SlideStart.FindAllStringIndex(body, -1)
	if len(starts) == 0 {
		return nil
	}

	slides := make([]string, 0, len(starts))
	for i, hit := range starts {
		begin := hit[1]
		limit := len(body)
		if i+1 < len(starts) {
			limit = starts[i+1][0]
		}
		end := limit
		if loc := SlideEnd.FindStringIndex(body[begin:]); loc != nil && begin+loc[0] < limit {
			end = begin + loc[0]
		}
		slides = append(slides, body[begin:end])
	}
	return slides
}

// AssetTargets returns every raw link target in body: Markdown links and
// images first, then src/href/poster attributes. Duplicates are kept.
func AssetTargets(body string) []string {
	var out []string
	for _, m := range MarkdownLink.FindAllStringSubmatch(body, -1) {
		if m[1] != "" {
			out = append(out, m[1])
		} else {
			out = append(out, m[2])
		}
	}
	for _, m := range AttrLink.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}
