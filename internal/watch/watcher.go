package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/shinyyama/revenue-dashboard/internal/service"
)

const defaultSettle = 2 * time.Second

// Watcher monitors an inbox directory for CSV files and runs each one through
// the import pipeline once it has stopped changing. Files are imported one at
// a time on the watcher goroutine.
type Watcher struct {
	dir      string
	importer service.ImportService
	settle   time.Duration
}

func New(dir string, importer service.ImportService) *Watcher {
	return &Watcher{dir: dir, importer: importer, settle: defaultSettle}
}

// Start begins watching and returns once the directory is registered. The
// watch stops when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return err
	}
	log.Printf("[watch] dir=%s started", w.dir)

	go func() {
		defer watcher.Close()
		pending := make(map[string]time.Time)
		tick := time.NewTicker(w.settle / 2)
		defer tick.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Printf("[watch] dir=%s stopped", w.dir)
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 && IsCSV(evt.Name) {
					pending[evt.Name] = time.Now()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[watch] error: %v", err)
			case now := <-tick.C:
				for _, path := range due(pending, now, w.settle) {
					delete(pending, path)
					w.importFile(ctx, path)
				}
			}
		}
	}()
	return nil
}

// Backfill imports CSV files already sitting in the directory. Files already
// in the ledger come back as skipped.
func (w *Watcher) Backfill(ctx context.Context) ([]service.Outcome, error) {
	entries, err := filepath.Glob(filepath.Join(w.dir, "*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(entries)
	var out []service.Outcome
	for _, e := range entries {
		if IsCSV(e) {
			if o, ok := w.importFile(ctx, e); ok {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (w *Watcher) importFile(ctx context.Context, path string) (service.Outcome, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Renamed away or deleted before it settled.
		log.Printf("[watch] read %s: %v", path, err)
		return service.Outcome{}, false
	}
	o := w.importer.ProcessFile(ctx, filepath.Base(path), data)
	log.Printf("[watch] file=%s status=%s msg=%q", filepath.Base(path), o.Status, o.Message)
	return o, true
}

// IsCSV reports whether path looks like an importable file.
func IsCSV(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".csv")
}

func due(pending map[string]time.Time, now time.Time, settle time.Duration) []string {
	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= settle {
			ready = append(ready, path)
		}
	}
	sort.Strings(ready)
	return ready
}
