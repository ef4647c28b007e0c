// Package storage is the file-system layer for deck projects: canonical
// path checks, the page document and the asset files around it.
package storage

import (
	"io/fs"

	"github.com/kristianernst/fast-slides/internal/models"
)

// Provider is the interface for file operations inside one project folder.
// Every path is relative to the project root and may not leave it.
type Provider interface {
	// List returns every regular file under the project except the page itself.
	List() ([]models.AssetFile, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Stat describes the file or directory at path.
	Stat(path string) (fs.FileInfo, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
