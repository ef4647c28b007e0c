// Package sandbox decides which raw link targets are local assets and
// resolves them inside a project directory without ever leaving it.
package sandbox

import (
	"path/filepath"
	"slices"
	"strings"
)

// AllowedRootSegments are the only top-level folders a site-absolute
// reference ("/images/x.png") may name to count as a project asset.
var AllowedRootSegments = []string{"assets", "images", "media", "data"}

var externalPrefixes = []string{
	"http://",
	"https://",
	"data:",
	"blob:",
	"mailto:",
	"tel:",
}

// SanitizeTarget trims whitespace, strips angle brackets from both ends and
// drops everything from the first space on (Markdown link titles and
// auto-links).
func SanitizeTarget(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.Trim(v, "<")
	v = strings.Trim(v, ">")
	if i := strings.IndexByte(v, ' '); i >= 0 {
		return v[:i]
	}
	return v
}

// LocalAssetPath returns the project-relative form of raw when it refers to
// a local asset. Remote URLs, fragments and site-absolute paths outside the
// allow-list report false; they are not assets, which is not an error.
func LocalAssetPath(raw string) (string, bool) {
	value := SanitizeTarget(raw)
	if value == "" || strings.HasPrefix(value, "#") {
		return "", false
	}
	lower := strings.ToLower(value)
	for _, p := range externalPrefixes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}

	value, _, _ = strings.Cut(value, "#")
	value, _, _ = strings.Cut(value, "?")
	if value == "" {
		return "", false
	}

	value = strings.ReplaceAll(value, `\`, "/")
	if strings.HasPrefix(value, "/") {
		top, _, _ := strings.Cut(value[1:], "/")
		if !slices.Contains(AllowedRootSegments, top) {
			return "", false
		}
		return strings.TrimLeft(value, "/"), true
	}
	return value, true
}

// IsTraversal reports an explicit attempt to climb out of the project.
func IsTraversal(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, "../")
}

// Resolve walks rel component by component on top of root. "." is skipped,
// names are appended and ".." pops the last appended name. Popping past
// root, or any root or volume component, rejects the whole reference.
func Resolve(root, rel string) (string, bool) {
	slashed := filepath.ToSlash(rel)
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" || strings.HasPrefix(slashed, "/") {
		return "", false
	}

	var parts []string
	for _, part := range strings.Split(slashed, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(parts) == 0 {
				return "", false
			}
			parts = parts[:len(parts)-1]
			if !Within(root, filepath.Join(append([]string{root}, parts...)...)) {
				return "", false
			}
		default:
			if filepath.VolumeName(part) != "" {
				return "", false
			}
			parts = append(parts, part)
		}
	}
	return filepath.Join(append([]string{root}, parts...)...), true
}

// Within reports whether path equals root or lies beneath it, comparing
// whole path components rather than raw string prefixes.
func Within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
