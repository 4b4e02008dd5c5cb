package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherFiresAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := New(dir, 50*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "export.json"), []byte(`[]`), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never fired after a json write")
	}
}

func TestWatcherIgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := New(dir, 30*time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	}, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	select {
	case <-fired:
		t.Fatal("non-json change should not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"), time.Second, func() {}, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()
	assert.Error(t, w.Watch())
}

func TestIsExportFile(t *testing.T) {
	assert.True(t, isExportFile("conversations_01.json"))
	assert.True(t, isExportFile("/some/dir/Export.JSON"))
	assert.False(t, isExportFile("manifest.txt"))
	assert.False(t, isExportFile("export.json.bak"))
}
