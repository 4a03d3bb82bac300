// Package inbox imports iCalendar files dropped into a watched directory.
package inbox

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/weekplan/internal/ics"
	"github.com/starford/weekplan/internal/models"
	"github.com/starford/weekplan/internal/storage"
)

const (
	// ProcessedDir receives files that were imported.
	ProcessedDir = "processed"
	// FailedDir receives files that could not be decoded or imported.
	FailedDir = "failed"

	ext      = ".ics"
	debounce = 200 * time.Millisecond
)

// Importer stores decoded events.
type Importer interface {
	Import(ctx context.Context, events []models.Event) (int, error)
}

// Watcher moves every *.ics file in its root through Importer.
type Watcher struct {
	files  storage.Provider
	imp    Importer
	loc    *time.Location
	logger *slog.Logger
	now    func() time.Time
}

// New creates a watcher over files. Decoded times are placed in loc.
func New(files storage.Provider, imp Importer, loc *time.Location, logger *slog.Logger) *Watcher {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{files: files, imp: imp, loc: loc, logger: logger, now: time.Now}
}

// Sweep imports every file already waiting in the root directory and
// returns the number of events imported.
func (w *Watcher) Sweep(ctx context.Context) (int, error) {
	infos, err := w.files.List("", ext)
	if err != nil {
		return 0, fmt.Errorf("inbox: sweep: %w", err)
	}
	total := 0
	for _, fi := range infos {
		if strings.ContainsRune(filepath.ToSlash(fi.Path), '/') {
			continue // already moved aside
		}
		n, err := w.process(ctx, fi.Path)
		if err != nil {
			w.logger.Warn("inbox: import failed", slog.String("file", fi.Path), slog.String("error", err.Error()))
			continue
		}
		total += n
	}
	return total, nil
}

// Run sweeps the directory and then watches it until ctx is cancelled.
// Bursts of writes to the same file are debounced before import.
func (w *Watcher) Run(ctx context.Context) error {
	root, err := w.files.Abs("")
	if err != nil {
		return err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("inbox: watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(root); err != nil {
		return fmt.Errorf("inbox: watch %s: %w", root, err)
	}
	w.logger.Info("inbox: started", slog.String("root", root))

	if n, err := w.Sweep(ctx); err != nil {
		w.logger.Warn("inbox: initial sweep failed", slog.String("error", err.Error()))
	} else if n > 0 {
		w.logger.Info("inbox: initial sweep", slog.Int("events", n))
	}

	pending := make(map[string]struct{})
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("inbox: stopped")
			return nil

		case <-timerCh:
			for rel := range pending {
				delete(pending, rel)
				n, err := w.process(ctx, rel)
				if err != nil {
					w.logger.Warn("inbox: import failed", slog.String("file", rel), slog.String("error", err.Error()))
					continue
				}
				w.logger.Info("inbox: imported", slog.String("file", rel), slog.Int("events", n))
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(strings.ToLower(name), ext) || strings.HasPrefix(name, ".") {
				continue
			}
			if filepath.Dir(ev.Name) != root {
				continue
			}
			pending[name] = struct{}{}
			schedule()

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("inbox: watcher error", slog.String("error", werr.Error()))
		}
	}
}

// process imports one file and moves it to ProcessedDir, or to FailedDir
// when it cannot be decoded or stored.
func (w *Watcher) process(ctx context.Context, rel string) (int, error) {
	data, err := w.files.Read(rel)
	if err != nil {
		// Removed between the event and the debounce.
		return 0, err
	}
	events, err := ics.Decode(data, w.loc)
	if err == nil {
		var n int
		n, err = w.imp.Import(ctx, events)
		if err == nil {
			return n, w.moveAside(rel, ProcessedDir)
		}
	}
	if merr := w.moveAside(rel, FailedDir); merr != nil {
		w.logger.Warn("inbox: move failed", slog.String("file", rel), slog.String("error", merr.Error()))
	}
	return 0, err
}

func (w *Watcher) moveAside(rel, dir string) error {
	base := filepath.Base(rel)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	dst := path.Join(dir, fmt.Sprintf("%s-%s%s", stem, w.now().UTC().Format("20060102T150405.000"), filepath.Ext(base)))
	return w.files.Move(rel, dst)
}
