package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kristianernst/fast-slides/internal/apperr"
)

func TestCanonicalDir_ResolvesSymlinks(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "target")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := CanonicalDir(link + string(filepath.Separator) + ".")
	if err != nil {
		t.Fatalf("CanonicalDir: %v", err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Errorf("CanonicalDir = %q, want %q", got, want)
	}
}

func TestCanonicalDir_Errors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	_ = os.WriteFile(file, []byte("x"), 0o644)

	_, err := CanonicalDir(filepath.Join(dir, "nope"))
	var fe *apperr.FileError
	if !errors.As(err, &fe) || !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing dir: err = %v", err)
	}
	if !strings.Contains(err.Error(), "nope") {
		t.Errorf("message %q should name the path", err)
	}

	if _, err := CanonicalDir(file); !errors.Is(err, apperr.ErrNotDirectory) {
		t.Errorf("file: err = %v, want ErrNotDirectory", err)
	}
	if _, err := CanonicalDir("   "); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("blank: err = %v, want ErrNotFound", err)
	}
}

func TestCanonicalProject(t *testing.T) {
	dir := t.TempDir()
	if _, err := CanonicalProject(dir); !errors.Is(err, apperr.ErrNotProject) {
		t.Errorf("err = %v, want ErrNotProject", err)
	}

	// A directory named page.mdx does not count.
	_ = os.Mkdir(PagePath(dir), 0o755)
	if _, err := CanonicalProject(dir); !errors.Is(err, apperr.ErrNotProject) {
		t.Errorf("err = %v, want ErrNotProject", err)
	}
	_ = os.Remove(PagePath(dir))

	_ = os.WriteFile(PagePath(dir), []byte("x"), 0o644)
	if _, err := CanonicalProject(dir); err != nil {
		t.Errorf("CanonicalProject: %v", err)
	}
}

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandUser("~/decks"); got != filepath.Join(home, "decks") {
		t.Errorf("ExpandUser(~/decks) = %q", got)
	}
	if got := ExpandUser("~"); got != home {
		t.Errorf("ExpandUser(~) = %q", got)
	}
	if got := ExpandUser("~other/x"); got != "~other/x" {
		t.Errorf("ExpandUser(~other/x) = %q", got)
	}
	if got := ExpandUser("/abs"); got != "/abs" {
		t.Errorf("ExpandUser(/abs) = %q", got)
	}
}

func TestScaffoldAndPage(t *testing.T) {
	root := t.TempDir()
	dir, err := Scaffold(root, "q3", "hello")
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	for _, sub := range ScaffoldDirs {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("missing %s folder", sub)
		}
	}
	got, err := ReadPage(dir)
	if err != nil || got != "hello" {
		t.Errorf("ReadPage = %q, %v", got, err)
	}
	if err := WritePage(dir, "bye"); err != nil {
		t.Fatalf("WritePage: %v", err)
	}
	if got, _ := ReadPage(dir); got != "bye" {
		t.Errorf("after WritePage = %q", got)
	}
	if ModTimeSeconds(PagePath(dir)) == 0 {
		t.Error("ModTimeSeconds should be non-zero")
	}
	if ModTimeSeconds(filepath.Join(dir, "missing")) == 0 {
		t.Error("ModTimeSeconds of missing file should fall back to now")
	}

	if _, err := Scaffold(root, "q3", "again"); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("second Scaffold err = %v, want ErrAlreadyExists", err)
	}
}
