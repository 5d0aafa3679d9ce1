// Package artifacts keeps the sealed code container the server hands out.
//
// The Store always serves the last container that passed validation: a
// truncated or corrupt file written over the artifact is logged and ignored
// until a valid one replaces it.
package artifacts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophcheck/internal/artifact"
	"github.com/dmitrijs2005/gophcheck/internal/common"
	"github.com/dmitrijs2005/gophcheck/internal/logging"
	"github.com/dmitrijs2005/gophcheck/internal/server/metrics"
	"github.com/fsnotify/fsnotify"
)

// Snapshot is one validated artifact.
type Snapshot struct {
	Data     []byte
	Records  int
	ETag     string
	LoadedAt time.Time
}

type Store struct {
	path     string
	debounce time.Duration
	metrics  *metrics.Metrics
	logger   logging.Logger
	current  atomic.Pointer[Snapshot]
}

// readFile is a seam for tests.
var readFile = os.ReadFile

func NewStore(path string, debounce time.Duration, m *metrics.Metrics, l logging.Logger) (*Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("artifact path: %w", err)
	}
	return &Store{
		path:     abs,
		debounce: debounce,
		metrics:  m,
		logger:   l.With("module", "artifact_store"),
	}, nil
}

// Path is the absolute artifact path.
func (s *Store) Path() string {
	return s.path
}

// Load reads and validates the artifact. On failure the previous snapshot,
// if any, stays current.
func (s *Store) Load(ctx context.Context) error {
	data, err := readFile(s.path)
	if err != nil {
		s.metrics.ObserveReload(false, 0)
		return fmt.Errorf("read artifact: %w", err)
	}

	c, err := artifact.Parse(data)
	if err != nil {
		s.metrics.ObserveReload(false, 0)
		return err
	}

	sum := sha256.Sum256(data)
	snap := &Snapshot{
		Data:     data,
		Records:  len(c.Records),
		ETag:     `"` + hex.EncodeToString(sum[:]) + `"`,
		LoadedAt: time.Now().UTC(),
	}
	s.current.Store(snap)
	s.metrics.ObserveReload(true, snap.Records)

	s.logger.Info(ctx, "artifact loaded", "path", s.path, "records", snap.Records)
	return nil
}

// Current returns the snapshot being served or common.ErrDatabaseNotLoaded
// if no valid artifact has been seen yet.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, common.ErrDatabaseNotLoaded
	}
	return snap, nil
}

// Watch reloads the artifact whenever it is written or replaced, once the
// file has been quiet for the debounce window. It blocks until ctx is done.
//
// The parent directory is watched rather than the file so that atomic
// rename-into-place updates are seen.
func (s *Store) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	s.logger.Info(ctx, "watching artifact", "path", s.path, "debounce", s.debounce)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !s.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := s.Load(ctx); err != nil {
				s.logger.Warn(ctx, "artifact reload rejected, serving previous", "error", err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn(ctx, "artifact watcher error", "error", err)
		}
	}
}

func (s *Store) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != s.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
