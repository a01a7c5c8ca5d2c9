package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type changes struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newChanges() *changes {
	return &changes{ch: make(chan string, 16)}
}

func (c *changes) record(path string) {
	c.mu.Lock()
	c.paths = append(c.paths, path)
	c.mu.Unlock()
	c.ch <- path
}

func (c *changes) wait(t *testing.T) string {
	t.Helper()
	select {
	case p := <-c.ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return ""
	}
}

func startWatch(t *testing.T, w *Watcher, c *changes) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, c.record) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Watch() error = %v", err)
		}
	})
	// give the event loop a moment to start
	time.Sleep(50 * time.Millisecond)
	return cancel
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lateness.txt")
	other := filepath.Join(dir, "other.txt")
	writeFile(t, target, "v1")

	w, err := New(Config{Path: target, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c := newChanges()
	startWatch(t, w, c)

	writeFile(t, other, "ignored")
	writeFile(t, target, "v2")

	if got := c.wait(t); got != target {
		t.Errorf("changed path = %q, want %q", got, target)
	}
}

func TestWatchDirectoryDebounces(t *testing.T) {
	dir := t.TempDir()
	w, err := New(Config{Path: dir, Debounce: 100 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c := newChanges()
	startWatch(t, w, c)

	policy := filepath.Join(dir, "bonus.policy")
	for i := 0; i < 5; i++ {
		writeFile(t, policy, "edit")
	}
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored")

	if got := c.wait(t); got != policy {
		t.Errorf("changed path = %q", got)
	}
	time.Sleep(300 * time.Millisecond)

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.paths) != 1 {
		t.Errorf("handler ran %d times, want 1: %v", len(c.paths), c.paths)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "x")
	writeFile(t, filepath.Join(dir, "a.policy"), "x")
	writeFile(t, filepath.Join(dir, ".hidden.txt"), "x")
	writeFile(t, filepath.Join(dir, "readme.md"), "x")

	w, err := New(Config{Path: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.shutdown()

	files, err := w.Files()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.policy"), filepath.Join(dir, "b.txt")}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("Files() = %v, want %v", files, want)
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{config: Config{Extensions: DefaultExtensions}}

	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/p/a.TXT", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/p/a.txt", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/p/a.yaml", Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: "/p/.a.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := w.relevant(tt.event); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestNewMissingPath(t *testing.T) {
	if _, err := New(Config{Path: filepath.Join(t.TempDir(), "missing")}, nil); err == nil {
		t.Error("expected error for missing path")
	}
}
