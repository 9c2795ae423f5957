package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "[render]\nengine = \"katex\"\n")

	reloads := make(chan Settings, 4)
	w, err := NewWatcher(NewLoader(path), func(s Settings) { reloads <- s },
		WithReloadDebounce(10*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "[render]\nengine = \"mathjax\"\ndebounce_ms = 75\n")

	select {
	case got := <-reloads:
		if got.Render.Engine != "mathjax" || got.Render.DebounceMS != 75 {
			t.Errorf("reloaded settings = %+v", got.Render)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatcherReportsReloadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "")

	errs := make(chan error, 4)
	w, err := NewWatcher(NewLoader(path), func(Settings) { t.Error("bad config handled") },
		WithReloadDebounce(10*time.Millisecond),
		WithErrorHandler(func(e error) { errs <- e }))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	writeConfig(t, path, "[render]\nengine = \"troff\"\n")

	select {
	case <-errs:
	case <-time.After(5 * time.Second):
		t.Fatal("reload error not reported")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, "")

	w, err := NewWatcher(NewLoader(path), func(Settings) {})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("first close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
