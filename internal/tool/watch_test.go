package tool

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatch_DebouncedChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "weather", ManifestName), weatherManifest)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 50*time.Millisecond, func() { changes <- struct{}{} }, nil)
	}()

	// Give the watcher time to register directories.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, filepath.Join(dir, "weather", ManifestName), weatherManifest+"\n# edited\n")
	writeFile(t, filepath.Join(dir, "weather", "forecast.sh"), "#!/bin/sh\n")

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Watch did not stop after cancel")
	}
}
