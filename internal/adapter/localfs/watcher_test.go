package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whjimmortal/floccus/internal/logging"
)

func TestWatcher_FiresOnChangeAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger("development")

	changed := make(chan struct{}, 1)
	w := NewWatcher(dir, logger, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	// Let the watcher start and add dir before writing.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, documentFile), []byte("{}"), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was not called within timeout")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after context cancellation")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	logger := logging.NewLogger("development")

	changed := make(chan struct{}, 1)
	w := NewWatcher(dir, logger, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("noise"), 0o644))

	select {
	case <-changed:
		t.Fatal("onChange fired for an unrelated file")
	case <-time.After(500 * time.Millisecond):
	}
}
