package artifacts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/artifact"
	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/filex"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func container(t *testing.T, records ...string) []byte {
	t.Helper()
	c := &artifact.Container{Encrypted: true, Version: artifact.FormatVersion, Records: records}
	data, err := c.Marshal()
	require.NoError(t, err)
	return data
}

func newStore(t *testing.T, path string, debounce time.Duration) *Store {
	t.Helper()
	s, err := NewStore(path, debounce, metrics.New(), logging.Discard())
	require.NoError(t, err)
	return s
}

func TestStore_LoadAndCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barcodes.json")
	s := newStore(t, path, time.Millisecond)

	_, err := s.Current()
	require.ErrorIs(t, err, common.ErrDatabaseNotLoaded)

	require.NoError(t, os.WriteFile(path, container(t, "a", "b"), 0o600))
	require.NoError(t, s.Load(context.Background()))

	snap, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Records)
	assert.NotEmpty(t, snap.ETag)
	assert.Equal(t, container(t, "a", "b"), snap.Data)
}

func TestStore_KeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barcodes.json")
	s := newStore(t, path, time.Millisecond)

	require.NoError(t, os.WriteFile(path, container(t, "a"), 0o600))
	require.NoError(t, s.Load(context.Background()))
	good, _ := s.Current()

	require.NoError(t, os.WriteFile(path, []byte(`["bare","array"]`), 0o600))
	err := s.Load(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidContainer)

	snap, err := s.Current()
	require.NoError(t, err)
	assert.Same(t, good, snap)
}

func TestStore_LoadMissingFile(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "absent.json"), time.Millisecond)
	require.Error(t, s.Load(context.Background()))
}

func TestStore_LoadReadSeam(t *testing.T) {
	orig := readFile
	readFile = func(string) ([]byte, error) { return nil, errors.New("io") }
	t.Cleanup(func() { readFile = orig })

	s := newStore(t, "barcodes.json", time.Millisecond)
	require.Error(t, s.Load(context.Background()))
	assert.True(t, filepath.IsAbs(s.Path()))
}

func TestStore_Relevant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "barcodes.json")
	s := newStore(t, path, time.Millisecond)

	assert.True(t, s.relevant(fsnotify.Event{Name: path, Op: fsnotify.Write}))
	assert.True(t, s.relevant(fsnotify.Event{Name: path, Op: fsnotify.Create}))
	assert.False(t, s.relevant(fsnotify.Event{Name: path, Op: fsnotify.Chmod}))
	assert.False(t, s.relevant(fsnotify.Event{Name: path + ".tmp", Op: fsnotify.Write}))
}

func TestStore_WatchReloadsOnAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "barcodes.json")
	require.NoError(t, os.WriteFile(path, container(t, "a"), 0o600))

	s := newStore(t, path, 20*time.Millisecond)
	require.NoError(t, s.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	next := container(t, "a", "b", "c")

	// The watcher must be registered before the write; retry until it lands.
	require.Eventually(t, func() bool {
		if err := filex.WriteFileAtomic(path, next, 0o600); err != nil {
			return false
		}
		snap, err := s.Current()
		return err == nil && snap.Records == 3
	}, 5*time.Second, 100*time.Millisecond)

	// A corrupt write is ignored.
	require.NoError(t, filex.WriteFileAtomic(path, []byte(`{"encrypted":false}`), 0o600))
	time.Sleep(200 * time.Millisecond)
	snap, err := s.Current()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Records)
}

func TestStore_WatchBadDir(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "missing", "barcodes.json"), time.Millisecond)
	require.Error(t, s.Watch(context.Background()))
}

func TestStore_WatchStopsOnCancel(t *testing.T) {
	s := newStore(t, filepath.Join(t.TempDir(), "barcodes.json"), time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
