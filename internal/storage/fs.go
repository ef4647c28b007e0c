package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/sandbox"
)

// FS implements Provider backed by the local file system.
type FS struct {
	root string // canonical project directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	canonical, err := CanonicalDir(root)
	if err != nil {
		return nil, err
	}
	return &FS{root: canonical}, nil
}

// Root returns the canonical project directory.
func (f *FS) Root() string { return f.root }

// Resolve maps a project-relative path to an absolute one, rejecting any
// path that climbs out of the project.
func (f *FS) Resolve(rel string) (string, error) {
	abs, ok := sandbox.Resolve(f.root, rel)
	if !ok {
		return "", fmt.Errorf("storage: path escapes project folder: %s", rel)
	}
	return abs, nil
}

// List walks the project and returns every regular file except the page
// document, sorted by path. Paths use forward slashes.
func (f *FS) List() ([]models.AssetFile, error) {
	page := PagePath(f.root)
	var out []models.AssetFile
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() || p == page {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return err
		}
		out = append(out, models.AssetFile{Path: filepath.ToSlash(rel), Bytes: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Read returns the raw bytes of a project file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Stat describes a project file or directory.
func (f *FS) Stat(path string) (fs.FileInfo, error) {
	abs, err := f.Resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	return info, nil
}

// Write atomically writes a project file, creating parent folders.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.Resolve(path)
	if err != nil {
		return err
	}
	if err := f.confine(path, filepath.Dir(abs)); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	// MkdirAll may have walked a symlink created since the first check.
	if err := f.confine(path, filepath.Dir(abs)); err != nil {
		return err
	}
	return WriteAtomic(abs, content)
}

// confine resolves symlinks on the deepest existing ancestor of dir and
// rejects it when the real location lies outside the project.
func (f *FS) confine(rel, dir string) error {
	existing := dir
	for {
		if _, err := os.Lstat(existing); err == nil {
			break
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			break
		}
		existing = parent
	}
	resolved, err := filepath.EvalSymlinks(existing)
	if err != nil {
		return apperr.NewFileError("write", rel, err)
	}
	if !sandbox.Within(f.root, resolved) {
		return apperr.NewFileError("write", rel,
			fmt.Errorf("%w: %s resolves outside the project folder", apperr.ErrInvalidName, resolved))
	}
	return nil
}

// WriteAtomic writes content to path: tmp file → fsync → rename.
func WriteAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fastslides-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

var _ Provider = (*FS)(nil)
