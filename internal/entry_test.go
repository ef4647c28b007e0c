package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kristianernst/fast-slides/internal/testutil"
)

func TestNewLogger_RotatingFile(t *testing.T) {
	var console bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "logs", "fastslides.log")

	logger, closer := NewLogger(ApplicationConfig{LogFile: logFile}, &console)
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(console.String(), `"msg":"hello"`) {
		t.Errorf("console = %q", console.String())
	}
	data, err := os.ReadFile(logFile)
	if err != nil || !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log file = %q, %v", data, err)
	}
}

func TestOpenService(t *testing.T) {
	home := t.TempDir()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	dir := testutil.Project(t, root, "deck", testutil.Deck("deck", "Deck", "# One"))

	cfg := NewDefaultConfig()
	cfg.FastSlides.Home = home
	cfg.History.Keep = 1

	var console bytes.Buffer
	logger, _ := NewLogger(cfg.App, &console)
	svc, closeSvc, err := OpenService(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeSvc()

	ctx := context.Background()
	for range 2 {
		if _, err := svc.Validate(ctx, dir); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := svc.History(ctx, dir, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("runs = %d, want 1", len(runs))
	}
	if _, err := os.Stat(filepath.Join(home, HistoryFileName)); err != nil {
		t.Errorf("history db: %v", err)
	}
}

func TestOpenService_HistoryDisabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.FastSlides.Home = t.TempDir()
	cfg.History.Enabled = false

	logger, _ := NewLogger(cfg.App, &bytes.Buffer{})
	svc, closeSvc, err := OpenService(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeSvc()

	if _, err := svc.History(context.Background(), cfg.FastSlides.Home, 0); err == nil {
		t.Error("expected error without a journal")
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	if err := Run(context.Background()); err == nil {
		t.Error("expected error without config")
	}
	if err := RunMCP(context.Background()); err == nil {
		t.Error("expected error without config")
	}
}
