// Package apperr defines the error taxonomy shared by the engine and its callers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("path does not exist")
	ErrNotDirectory  = errors.New("path is not a directory")
	ErrNotProject    = errors.New("project folder must contain page.mdx")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidName   = errors.New("invalid name")
)

// FileError is a precondition or filesystem failure tied to one path.
// It always aborts the requested operation.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// NewFileError wraps err with the operation and offending path.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}
