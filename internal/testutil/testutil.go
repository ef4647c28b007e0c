// Package testutil provides shared test helpers for setting up deck
// projects, the registry home and the validation journal.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kristianernst/fast-slides/internal/history"
	"github.com/kristianernst/fast-slides/internal/registry"
	"github.com/kristianernst/fast-slides/internal/storage"
)

// TestDB creates a temporary validation journal that is automatically closed.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	db, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestHome creates a temporary registry home with an empty config store.
func TestHome(t *testing.T) *registry.Store {
	t.Helper()
	return registry.NewStore(filepath.Join(t.TempDir(), "home"), "")
}

// Deck renders a page document with frontmatter and one section per slide.
func Deck(project, title string, slides ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "---\nproject: %s\ntitle: %s\n---\n\n<main className=\"deck\">\n", project, title)
	for _, s := range slides {
		fmt.Fprintf(&b, "<section className=\"slide\">\n%s\n</section>\n", s)
	}
	b.WriteString("</main>\n")
	return b.String()
}

// Project creates root/name with the given page document and returns its
// canonical path.
func Project(t *testing.T, root, name, page string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(storage.PagePath(dir), []byte(page), 0o644); err != nil {
		t.Fatal(err)
	}
	canonical, err := storage.CanonicalProject(dir)
	if err != nil {
		t.Fatal(err)
	}
	return canonical
}

// WriteFile writes content to rel under dir, creating parent folders.
func WriteFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
