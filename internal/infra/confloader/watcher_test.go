package confloader

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewWatcher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	w, err := NewWatcher(WithWatcherLogger(logger), WithDebounce(time.Second))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if w.logger != logger {
		t.Error("WithWatcherLogger() option not applied")
	}
	if w.debounce != time.Second {
		t.Errorf("debounce = %v, want 1s", w.debounce)
	}
}

func TestWatcher_Watch_NonexistentDir(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch("/nonexistent/path/config.yaml"); err == nil {
		t.Error("Watch() expected error for nonexistent directory")
	}
}

func TestWatcher_StopIdempotent(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	w.StartAsync()

	if err := w.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}
}

func TestWatcher_NotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "config.yaml")
	otherFile := filepath.Join(dir, "other.yaml")
	for _, f := range []string{configFile, otherFile} {
		if err := os.WriteFile(f, []byte("a: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewWatcher(WithDebounce(150 * time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := w.Watch(configFile); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	changed := make(chan string, 8)
	w.OnChange(func(path string) {
		calls.Add(1)
		changed <- path
	})
	w.StartAsync()

	// Unwatched siblings are ignored.
	if err := os.WriteFile(otherFile, []byte("a: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A burst of writes collapses into one notification.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(configFile, []byte("a: 3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case path := <-changed:
		if filepath.Base(path) != "config.yaml" {
			t.Errorf("changed path = %q, want config.yaml", path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callbacks = %d, want 1", n)
	}
}

func TestWatcher_NoDebounce(t *testing.T) {
	w, err := NewWatcher(WithDebounce(0))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	var got string
	w.OnChange(func(path string) { got = path })
	w.schedule("/etc/tokstore/config.yaml")

	if got != "/etc/tokstore/config.yaml" {
		t.Errorf("callback path = %q", got)
	}
}
