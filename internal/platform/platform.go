// Package platform wraps the host desktop actions: revealing a folder in
// the file manager and packing a folder into a zip archive.
package platform

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Shell performs host-specific actions.
type Shell interface {
	// Reveal opens dir in the platform file manager without waiting for it.
	Reveal(dir string) error
	// Archive packs srcDir, keeping the folder itself as the top entry, into
	// the zip file dest. dest is replaced when it exists.
	Archive(srcDir, dest string) error
}

// Runner launches external commands.
type Runner interface {
	// Start launches name without waiting for it to finish.
	Start(name string, args ...string) error
	// Run launches name and waits for a zero exit status.
	Run(name string, args ...string) error
}

type execRunner struct{}

func (execRunner) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func (execRunner) Run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, out)
	}
	return nil
}

// Detect returns the shell for the running operating system.
func Detect() Shell {
	return ForOS(runtime.GOOS, execRunner{})
}

// ForOS returns the shell for goos using r to launch commands.
func ForOS(goos string, r Runner) Shell {
	return &shell{goos: goos, run: r}
}

type shell struct {
	goos string
	run  Runner
}

// opener is the file-manager command for each platform.
func (s *shell) opener() string {
	switch s.goos {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}

func (s *shell) Reveal(dir string) error {
	if err := s.run.Start(s.opener(), dir); err != nil {
		return fmt.Errorf("platform: open %s: %w", dir, err)
	}
	return nil
}

func (s *shell) Archive(srcDir, dest string) error {
	if s.goos == "darwin" {
		if err := s.run.Run("ditto", "-c", "-k", "--sequesterRsrc", "--keepParent", srcDir, dest); err != nil {
			return fmt.Errorf("platform: archive %s: %w", srcDir, err)
		}
		return nil
	}
	return zipDir(srcDir, dest)
}
