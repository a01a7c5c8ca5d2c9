// Package watch recompiles policy text files when they change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Config configures a Watcher.
type Config struct {
	// Path is a policy file or a directory of policy files.
	Path string

	// Debounce is the quiet period after the last write to a file before
	// its handler runs. Default: 200ms
	Debounce time.Duration

	// Extensions limits which files in a directory are watched.
	// Default: .txt, .policy
	Extensions []string
}

// DefaultExtensions are the policy file extensions watched in directories.
var DefaultExtensions = []string{".txt", ".policy"}

// Watcher calls a handler with the path of each policy file that changed.
// Writes to one file are debounced independently of other files.
type Watcher struct {
	watcher *fsnotify.Watcher
	config  Config
	logger  *slog.Logger

	// target is set when Path is a single file
	target string

	mu     sync.Mutex
	timers map[string]*time.Timer
	wg     sync.WaitGroup
}

// New creates a watcher for cfg.Path. The path must exist.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 200 * time.Millisecond
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default().With("component", "watch")
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch path: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		config:  cfg,
		logger:  logger,
		timers:  make(map[string]*time.Timer),
	}

	// editors replace files on save, so a single file is watched through
	// its directory
	dir := cfg.Path
	if !info.IsDir() {
		dir = filepath.Dir(cfg.Path)
		w.target = filepath.Clean(cfg.Path)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
	}
	return w, nil
}

// Files returns the policy files currently matched by the watcher, sorted.
func (w *Watcher) Files() ([]string, error) {
	if w.target != "" {
		return []string{w.target}, nil
	}
	entries, err := os.ReadDir(w.config.Path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		path := filepath.Join(w.config.Path, e.Name())
		if !e.IsDir() && w.matches(path) {
			files = append(files, path)
		}
	}
	return files, nil
}

// Watch blocks until ctx is done, calling onChange for each changed file.
// Handler calls for different files may run concurrently.
func (w *Watcher) Watch(ctx context.Context, onChange func(path string)) error {
	defer w.shutdown()

	w.logger.Info("watching policy files",
		"path", w.config.Path,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("policy file event", "path", event.Name, "op", event.Op.String())
			w.schedule(ctx, filepath.Clean(event.Name), onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string, onChange func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.config.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		if w.timers[path] == t {
			delete(w.timers, path)
		}
		w.mu.Unlock()
		if ctx.Err() == nil {
			onChange(path)
		}
	})
	w.timers[path] = t
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
	w.watcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if w.target != "" {
		return filepath.Clean(event.Name) == w.target
	}
	return w.matches(event.Name)
}

func (w *Watcher) matches(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.config.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Close releases the watcher without calling Watch. Watch closes it itself
// on return.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
