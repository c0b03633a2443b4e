package confloader

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherNotifiesOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "respcache.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() = %v", err)
	}
	defer w.Stop()

	changed := make(chan string, 4)
	w.OnChange(func(p string) {
		select {
		case changed <- p:
		default:
		}
	})

	if err := w.Watch(path); err != nil {
		t.Fatalf("Watch() = %v", err)
	}
	w.StartAsync()

	// Give the watcher a moment to register before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("rewrite config file: %v", err)
	}

	select {
	case p := <-changed:
		if filepath.Base(p) != "respcache.yaml" {
			t.Errorf("changed path = %q, want respcache.yaml", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification within timeout")
	}
}

func TestWatcherStop(t *testing.T) {
	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher() = %v", err)
	}

	w.StartAsync()
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() = %v", err)
	}
}
