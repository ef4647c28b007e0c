package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kristianernst/fast-slides/internal/apperr"
)

// PageFileName is the deck document every project folder must contain.
const PageFileName = "page.mdx"

// ScaffoldDirs are created next to the page for a new project.
var ScaffoldDirs = []string{"images", "media", "data"}

// PagePath returns the page document path inside dir.
func PagePath(dir string) string {
	return filepath.Join(dir, PageFileName)
}

// ExpandUser replaces a leading "~/" (or a bare "~") with the home directory.
func ExpandUser(raw string) string {
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(raw[1:], "/"))
}

// CanonicalDir expands raw and resolves it to an absolute, symlink-free
// directory path.
func CanonicalDir(raw string) (string, error) {
	expanded := ExpandUser(strings.TrimSpace(raw))
	if expanded == "" {
		return "", apperr.NewFileError("open", raw, apperr.ErrNotFound)
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", apperr.NewFileError("open", expanded, apperr.ErrNotFound)
		}
		return "", apperr.NewFileError("open", expanded, err)
	}
	if !info.IsDir() {
		return "", apperr.NewFileError("open", expanded, apperr.ErrNotDirectory)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", apperr.NewFileError("open", expanded, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", apperr.NewFileError("open", abs, err)
	}
	return canonical, nil
}

// CanonicalProject is CanonicalDir for a folder that must hold a regular
// page document.
func CanonicalProject(raw string) (string, error) {
	dir, err := CanonicalDir(raw)
	if err != nil {
		return "", err
	}
	if !IsProject(dir) {
		return "", apperr.NewFileError("open project", dir, apperr.ErrNotProject)
	}
	return dir, nil
}

// IsProject reports whether dir holds a regular page document.
func IsProject(dir string) bool {
	info, err := os.Stat(PagePath(dir))
	return err == nil && info.Mode().IsRegular()
}

// ReadPage returns the page document of a project folder.
func ReadPage(dir string) (string, error) {
	page := PagePath(dir)
	data, err := os.ReadFile(page)
	if err != nil {
		return "", apperr.NewFileError("read", page, err)
	}
	return string(data), nil
}

// WritePage atomically replaces the page document of a project folder.
func WritePage(dir, content string) error {
	page := PagePath(dir)
	if err := WriteAtomic(page, []byte(content)); err != nil {
		return apperr.NewFileError("write", page, err)
	}
	return nil
}

// ModTimeSeconds returns the modification time of path in epoch seconds,
// falling back to the current time when it cannot be read.
func ModTimeSeconds(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return time.Now().Unix()
	}
	return info.ModTime().Unix()
}

// Scaffold creates a new project folder named name under root with the
// standard asset folders and the given page document.
func Scaffold(root, name, page string) (string, error) {
	dir := filepath.Join(root, name)
	if _, err := os.Stat(dir); err == nil {
		return "", apperr.NewFileError("create project", dir, apperr.ErrAlreadyExists)
	}
	for _, sub := range ScaffoldDirs {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return "", apperr.NewFileError("create project", dir, fmt.Errorf("mkdir %s: %w", sub, err))
		}
	}
	if err := WritePage(dir, page); err != nil {
		return "", err
	}
	return dir, nil
}
