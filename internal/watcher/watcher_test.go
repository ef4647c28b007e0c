package watcher

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/kristianernst/fast-slides/internal/models"
	"github.com/kristianernst/fast-slides/internal/registry"
	"github.com/kristianernst/fast-slides/internal/storage"
	"github.com/kristianernst/fast-slides/internal/testutil"
	"github.com/kristianernst/fast-slides/internal/validate"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	last   map[string]*models.ValidationReport
}

func (r *recorder) callback(kind, dir string, report *models.ValidationReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind+":"+dir)
	if r.last == nil {
		r.last = make(map[string]*models.ValidationReport)
	}
	r.last[dir] = report
}

func (r *recorder) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func remember(t *testing.T, store *registry.Store, dir string) {
	t.Helper()
	if _, err := store.Update(func(c *registry.Config) error {
		c.Remember(dir)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}

func start(t *testing.T, store *registry.Store, rec *recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	opts := Options{Debounce: 50 * time.Millisecond, Rescan: 50 * time.Millisecond}
	go Watch(ctx, store, validate.Validate, opts, quietLogger(), rec.callback)
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_PageWriteRevalidates(t *testing.T) {
	store := testutil.TestHome(t)
	dir := testutil.Project(t, t.TempDir(), "deck", testutil.Deck("deck", "T", "hello"))
	remember(t, store, dir)

	rec := &recorder{}
	start(t, store, rec)

	_ = os.WriteFile(storage.PagePath(dir), []byte("no slides here"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KindValidated + ":" + dir)
	}, "page write did not trigger validation")

	rec.mu.Lock()
	report := rec.last[dir]
	rec.mu.Unlock()
	if report == nil || report.OK() {
		t.Errorf("report should carry the missing-slides error: %+v", report)
	}
}

func TestWatcher_FollowsNewlyOpenedProjects(t *testing.T) {
	store := testutil.TestHome(t)
	rec := &recorder{}
	start(t, store, rec)

	dir := testutil.Project(t, t.TempDir(), "late", testutil.Deck("late", "T", "x"))
	remember(t, store, dir)
	time.Sleep(200 * time.Millisecond)

	_ = storage.WritePage(dir, testutil.Deck("late", "T", "y"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KindValidated + ":" + dir)
	}, "project opened after start was not watched")
}

func TestWatcher_PageRemoved(t *testing.T) {
	store := testutil.TestHome(t)
	dir := testutil.Project(t, t.TempDir(), "deck", testutil.Deck("deck", "T", "x"))
	remember(t, store, dir)

	rec := &recorder{}
	start(t, store, rec)

	_ = os.Remove(storage.PagePath(dir))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has(KindRemoved + ":" + dir)
	}, "expected removed callback")
}
