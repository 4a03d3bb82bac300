package inbox

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/weekplan/internal/ics"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/storage"
)

type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Import(_ context.Context, events []models.Event) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return len(events), nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func testEnv(t *testing.T) (*storage.FS, *recorder, *Watcher) {
	t.Helper()
	files, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return files, rec, New(files, rec, time.UTC, logger)
}

func calendar(ids ...string) []byte {
	var events []models.Event
	for _, id := range ids {
		ev := models.Event{
			ID:        id,
			Type:      "Relax",
			Title:     "Imported " + id,
			Date:      time.Date(2026, 4, 4, 0, 0, 0, 0, time.UTC),
			StartTime: "2:00 PM",
			EndTime:   "3:00 PM",
			Repeat:    models.RepeatNone,
		}
		events = append(events, ev)
	}
	return ics.Encode(events, time.UTC)
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

func TestSweep_ImportsAndMovesAside(t *testing.T) {
	files, rec, w := testEnv(t)
	_ = files.Write("a.ics", calendar("a1", "a2"))
	_ = files.Write("notes.txt", []byte("ignored"))

	n, err := w.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 2 || rec.count() != 2 {
		t.Errorf("imported %d (recorded %d), want 2", n, rec.count())
	}
	if rec.events[0].StartTime != "2:00 PM" {
		t.Errorf("StartTime = %q", rec.events[0].StartTime)
	}
	if _, err := files.Read("a.ics"); err == nil {
		t.Error("a.ics should be moved out of the inbox")
	}
	done, _ := files.List(ProcessedDir, ".ics")
	if len(done) != 1 || !strings.HasPrefix(done[0].Path, ProcessedDir+string(os.PathSeparator)+"a-") {
		t.Errorf("processed = %+v", done)
	}
	if _, err := files.Read("notes.txt"); err != nil {
		t.Error("non-ics file should be left alone")
	}

	// A second sweep does not re-import moved files.
	if n, _ := w.Sweep(context.Background()); n != 0 {
		t.Errorf("second sweep imported %d", n)
	}
}

func TestSweep_BadFileGoesToFailed(t *testing.T) {
	files, rec, w := testEnv(t)
	_ = files.Write("broken.ics", []byte("   "))

	if _, err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if rec.count() != 0 {
		t.Errorf("imported %d from a broken file", rec.count())
	}
	failed, _ := files.List(FailedDir, ".ics")
	if len(failed) != 1 {
		t.Errorf("failed = %+v", failed)
	}
}

func TestRun_ImportsNewFiles(t *testing.T) {
	files, rec, w := testEnv(t)
	_ = files.Write("early.ics", calendar("e1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool { return rec.count() == 1 },
		"initial sweep did not import early.ics")

	if err := files.Write("late.ics", calendar("l1", "l2")); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, 20*time.Millisecond, func() bool { return rec.count() == 3 },
		"watcher did not import late.ics")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
}
