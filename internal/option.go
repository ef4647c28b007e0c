package internal

import (
	"io"

	"github.com/kristianernst/fast-slides/internal/platform"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	shell  platform.Shell
	logOut io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithShell overrides the host shell used to reveal folders and pack
// archives.
func WithShell(sh platform.Shell) Option {
	return func(a *application) {
		a.shell = sh
	}
}

// WithLogOutput sets the console log destination (stdout by default).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}
