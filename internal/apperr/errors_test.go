package apperr

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestFileError_MessageNamesPathAndCause(t *testing.T) {
	err := NewFileError("read page", "/decks/q3/page.mdx", fs.ErrPermission)
	msg := err.Error()
	if !strings.Contains(msg, "/decks/q3/page.mdx") {
		t.Errorf("message %q does not name the path", msg)
	}
	if !strings.Contains(msg, "permission denied") {
		t.Errorf("message %q does not carry the cause", msg)
	}
}

func TestFileError_Unwrap(t *testing.T) {
	var err error = NewFileError("open project", "/x", ErrNotProject)
	if !errors.Is(err, ErrNotProject) {
		t.Error("errors.Is should match the wrapped sentinel")
	}
	var fe *FileError
	if !errors.As(err, &fe) || fe.Path != "/x" {
		t.Errorf("errors.As failed: %+v", fe)
	}
}
