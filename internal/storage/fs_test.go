package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kristianernst/fast-slides/internal/apperr"
)

func tempProject(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PageFileName), []byte("page"), 0o644); err != nil {
		t.Fatal(err)
	}
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempProject(t)
	content := []byte("\x89PNG")
	if err := s.Write("images/a.png", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("images/a.png")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
	info, err := s.Stat("images")
	if err != nil || !info.IsDir() {
		t.Errorf("Stat(images) = %v, %v", info, err)
	}
}

func TestList(t *testing.T) {
	s := tempProject(t)
	_ = s.Write("media/b.mp4", []byte("bb"))
	_ = s.Write("images/a.png", []byte("a"))
	_ = s.Write("notes.txt", []byte("ccc"))

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"images/a.png", "media/b.mp4", "notes.txt"}
	if len(items) != len(want) {
		t.Fatalf("items = %+v", items)
	}
	for i, w := range want {
		if items[i].Path != w {
			t.Errorf("items[%d] = %q, want %q", i, items[i].Path, w)
		}
	}
	if items[1].Bytes != 2 {
		t.Errorf("bytes = %d, want 2", items[1].Bytes)
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempProject(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
		"images/../../x",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	s := tempProject(t)
	_ = s.Write("data/atomic.json", []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write("data/atomic.json", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("data/atomic.json")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(s.Root(), "data", ".fastslides-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	_ = os.WriteFile(f, nil, 0o644)
	_, err := NewFS(f)
	if !errors.Is(err, apperr.ErrNotDirectory) {
		t.Errorf("err = %v, want ErrNotDirectory", err)
	}
}

func TestWrite_SymlinkedFolderOutsideProject(t *testing.T) {
	s := tempProject(t)
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(s.Root(), "images")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	for _, rel := range []string{"images/a.png", "images/nested/b.png"} {
		if err := s.Write(rel, []byte("x")); !errors.Is(err, apperr.ErrInvalidName) {
			t.Errorf("Write(%s) = %v, want ErrInvalidName", rel, err)
		}
	}
	entries, err := os.ReadDir(outside)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("files written outside the project: %v", entries)
	}
}

func TestWrite_SymlinkedFolderInsideProject(t *testing.T) {
	s := tempProject(t)
	if err := os.MkdirAll(filepath.Join(s.Root(), "media", "shared"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(s.Root(), "media", "shared"), filepath.Join(s.Root(), "images")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := s.Write("images/a.png", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Root(), "media", "shared", "a.png")); err != nil {
		t.Errorf("expected file in linked folder: %v", err)
	}
}
