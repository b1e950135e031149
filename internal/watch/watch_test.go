package watch_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propwire/propwire/internal/watch"
)

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "contact.xml")
	err := os.WriteFile(docPath, []byte("<Contact/>"), 0644)
	require.NoError(t, err, "failed to create test file")

	w, err := watch.New(docPath, 50*time.Millisecond)
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Rapid writes should coalesce into a single notification
	for i := 0; i < 10; i++ {
		err := os.WriteFile(docPath, []byte(fmt.Sprintf("<Contact v=%q/>", fmt.Sprint(i))), 0644)
		require.NoError(t, err, "failed to write file")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
		// Expected
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
		// Expected - no second notification
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "contact.xml")
	otherPath := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(docPath, []byte("<Contact/>"), 0644))
	require.NoError(t, os.WriteFile(otherPath, []byte("initial"), 0644))

	w, err := watch.New(docPath, 50*time.Millisecond)
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	require.NoError(t, os.WriteFile(otherPath, []byte("other content"), 0644))

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
		// Expected
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "contact.xml")
	require.NoError(t, os.WriteFile(docPath, []byte("<Contact/>"), 0644))

	w, err := watch.New(docPath, 50*time.Millisecond)
	require.NoError(t, err, "failed to create watcher")

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")

	done := make(chan struct{})
	go func() {
		err := w.Stop()
		assert.NoError(t, err, "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
		// Expected
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_RenameTriggersNotification(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "contact.xml")
	tmpPath := filepath.Join(dir, "contact.xml.tmp")
	require.NoError(t, os.WriteFile(docPath, []byte("<Contact/>"), 0644))

	w, err := watch.New(docPath, 50*time.Millisecond)
	require.NoError(t, err, "failed to create watcher")
	defer func() { _ = w.Stop() }()

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")

	// Editors often save via write-then-rename
	require.NoError(t, os.WriteFile(tmpPath, []byte("<Contact edited=\"yes\"/>"), 0644))
	require.NoError(t, os.Rename(tmpPath, docPath))

	select {
	case <-onChange:
		// Expected
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for renamed document")
	}
}
