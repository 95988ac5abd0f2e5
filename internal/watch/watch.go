// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch keeps a file-based project's References section current
// while its section files are being edited.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-drafter/internal/draft"
	"github.com/pdiddy/paper-drafter/internal/references"
)

// DefaultDebounce is how long the watcher waits after the last change
// before synchronising.
const DefaultDebounce = 200 * time.Millisecond

// Callback is called after every synchronisation pass.
type Callback func(res references.Result, err error)

// Option configures Watch.
type Option func(*watcher)

// WithDebounce sets the quiet period before a pass.
func WithDebounce(d time.Duration) Option {
	return func(w *watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *watcher) {
		w.logger = l
	}
}

// WithCallback registers cb to run after each pass.
func WithCallback(cb Callback) Option {
	return func(w *watcher) {
		w.cb = cb
	}
}

type watcher struct {
	dir      string
	syncer   *references.Synchronizer
	debounce time.Duration
	logger   *zap.Logger
	cb       Callback
}

// Watch synchronises projectDir once, then again after every burst of
// changes to outline.yaml or a section file, until ctx is cancelled. The
// pass's own write of the References file triggers one more pass, which
// finds nothing to do.
func Watch(ctx context.Context, projectDir string, s *references.Synchronizer, opts ...Option) error {
	w := &watcher{
		dir:      projectDir,
		syncer:   s,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(projectDir); err != nil {
		return fmt.Errorf("watching %s: %w", projectDir, err)
	}
	w.logger.Info("watcher started", zap.String("dir", projectDir))

	w.sync()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			w.logger.Info("watcher stopped")
			return nil

		case <-timerCh:
			w.sync()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("project changed", zap.String("path", filepath.Base(ev.Name)), zap.String("op", ev.Op.String()))
			schedule()

		case werr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(werr))
		}
	}
}

func (w *watcher) sync() {
	res, err := draft.SyncProject(w.dir, w.syncer)
	switch {
	case err != nil:
		w.logger.Warn("sync failed", zap.Error(err))
	case res.Changed():
		w.logger.Info("references "+string(res.Action),
			zap.String("block_id", res.BlockID),
			zap.Int("references", len(res.References)))
	}
	if w.cb != nil {
		w.cb(res, err)
	}
}

// relevant reports whether ev touches the outline or a section file.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	if name == draft.OutlineFile {
		return true
	}
	return draft.IsSectionFile(name)
}
