package platform

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

type call struct {
	wait bool
	name string
	args []string
}

type fakeRunner struct {
	calls []call
	err   error
}

func (f *fakeRunner) Start(name string, args ...string) error {
	f.calls = append(f.calls, call{false, name, args})
	return f.err
}

func (f *fakeRunner) Run(name string, args ...string) error {
	f.calls = append(f.calls, call{true, name, args})
	return f.err
}

func TestReveal(t *testing.T) {
	for goos, want := range map[string]string{"darwin": "open", "windows": "explorer", "linux": "xdg-open", "freebsd": "xdg-open"} {
		r := &fakeRunner{}
		if err := ForOS(goos, r).Reveal("/decks/q3"); err != nil {
			t.Fatalf("%s: %v", goos, err)
		}
		if len(r.calls) != 1 || r.calls[0].wait || r.calls[0].name != want || !reflect.DeepEqual(r.calls[0].args, []string{"/decks/q3"}) {
			t.Errorf("%s: calls = %+v", goos, r.calls)
		}
	}
}

func TestReveal_Error(t *testing.T) {
	r := &fakeRunner{err: errors.New("no display")}
	if err := ForOS("linux", r).Reveal("/x"); err == nil {
		t.Error("expected error")
	}
}

func TestArchive_DarwinUsesDitto(t *testing.T) {
	r := &fakeRunner{}
	if err := ForOS("darwin", r).Archive("/skills/fastslides", "/tmp/out.zip"); err != nil {
		t.Fatal(err)
	}
	want := []string{"-c", "-k", "--sequesterRsrc", "--keepParent", "/skills/fastslides", "/tmp/out.zip"}
	if len(r.calls) != 1 || !r.calls[0].wait || r.calls[0].name != "ditto" || !reflect.DeepEqual(r.calls[0].args, want) {
		t.Errorf("calls = %+v", r.calls)
	}
}

func TestArchive_ZipKeepsParent(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "fastslides")
	_ = os.MkdirAll(filepath.Join(src, "scripts"), 0o755)
	_ = os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("# Skill"), 0o644)
	_ = os.WriteFile(filepath.Join(src, "scripts", "audit.py"), []byte("print()"), 0o644)

	dest := filepath.Join(base, "out.zip")
	r := &fakeRunner{}
	if err := ForOS("linux", r).Archive(src, dest); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("zip export should not shell out: %+v", r.calls)
	}

	zr, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	want := []string{"fastslides/", "fastslides/SKILL.md", "fastslides/scripts/", "fastslides/scripts/audit.py"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("entries = %v, want %v", names, want)
	}
}

func TestZipDestination(t *testing.T) {
	for in, want := range map[string]string{
		"/tmp/skill":     "/tmp/skill.zip",
		"/tmp/skill.zip": "/tmp/skill.zip",
		"/tmp/skill.ZIP": "/tmp/skill.ZIP",
		"/tmp/skill.tar": "/tmp/skill.zip",
	} {
		if got := ZipDestination(in); got != want {
			t.Errorf("ZipDestination(%q) = %q, want %q", in, got, want)
		}
	}
}
