package sandbox

import (
	"path/filepath"
	"testing"
)

func TestLocalAssetPath(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"./images/a.png", "./images/a.png", true},
		{"images/a.png", "images/a.png", true},
		{"  <images/a.png>  ", "images/a.png", true},
		{`images/a.png "Title"`, "images/a.png", true},
		{"images/a.png?v=2#top", "images/a.png", true},
		{`images\win\a.png`, "images/win/a.png", true},
		{"/images/a.png", "images/a.png", true},
		{"/assets/x/y.svg", "assets/x/y.svg", true},
		{"/data", "data", true},
		{"/logo.png", "", false},
		{"/imagesx/a.png", "", false},
		{"//images/a.png", "", false},
		{"https://example.com/a.png", "", false},
		{"HTTP://example.com/a.png", "", false},
		{"data:image/png;base64,AAAA", "", false},
		{"blob:abc", "", false},
		{"mailto:a@b.c", "", false},
		{"tel:123", "", false},
		{"#section", "", false},
		{"?q=1", "", false},
		{"", "", false},
		{"   ", "", false},
		{"../../etc/passwd", "../../etc/passwd", true},
	}
	for _, tt := range tests {
		got, ok := LocalAssetPath(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("LocalAssetPath(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsTraversal(t *testing.T) {
	for rel, want := range map[string]bool{
		"..":           true,
		"../x.png":     true,
		"../../etc":    true,
		"images/../x":  false,
		"..images/x":   false,
		"./images/a":   false,
		"images/a.png": false,
	} {
		if got := IsTraversal(rel); got != want {
			t.Errorf("IsTraversal(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestResolve(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deck")

	tests := []struct {
		rel    string
		want   string
		wantOK bool
	}{
		{"images/a.png", filepath.Join(root, "images", "a.png"), true},
		{"./images/./a.png", filepath.Join(root, "images", "a.png"), true},
		{"images//a.png", filepath.Join(root, "images", "a.png"), true},
		{"images/../media/b.mp4", filepath.Join(root, "media", "b.mp4"), true},
		{"a/b/../../c", filepath.Join(root, "c"), true},
		{"", root, true},
		{".", root, true},
		{"..", "", false},
		{"../x", "", false},
		{"images/../../x", "", false},
		{"a/../../deck/x", "", false},
		{"/etc/passwd", "", false},
	}
	for _, tt := range tests {
		got, ok := Resolve(root, tt.rel)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("Resolve(%q) = (%q, %v), want (%q, %v)", tt.rel, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveNeverEscapes(t *testing.T) {
	root := filepath.Join(t.TempDir(), "deck")
	inputs := []string{
		"x/../../..", "../deck/a", "a/b/c/../../../../d", "./../a", "a/./../..",
		"images/a.png", "a/b/../c", "....", "..a/b", "a/..",
	}
	for _, rel := range inputs {
		got, ok := Resolve(root, rel)
		if ok && !Within(root, got) {
			t.Errorf("Resolve(%q) = %q escapes %q", rel, got, root)
		}
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "deck")
	if !Within(root, root) {
		t.Error("root should be within itself")
	}
	if !Within(root, filepath.Join(root, "images", "a.png")) {
		t.Error("child should be within root")
	}
	if Within(root, filepath.Join(string(filepath.Separator), "srv", "deck-other", "a.png")) {
		t.Error("sibling with shared prefix must not be within root")
	}
	if Within(root, filepath.Join(string(filepath.Separator), "srv")) {
		t.Error("parent must not be within root")
	}
}

func TestSanitizeTarget(t *testing.T) {
	if got := SanitizeTarget("< images/a.png>"); got != "" {
		t.Errorf("leading space after bracket should leave nothing, got %q", got)
	}
	if got := SanitizeTarget("<<a.png>>"); got != "a.png" {
		t.Errorf("got %q", got)
	}
}
