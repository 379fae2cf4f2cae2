// Package watcher re-triggers analysis when the graph data document
// changes on disk. Editors and exporters often replace files with
// rename+create bursts, so raw fsnotify events run through a debouncer
// before anyone acts on them.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/chainwatch/cascade/pkg/logging"
)

// ChangeEvent signals that the graph document changed.
type ChangeEvent struct {
	Path      string
	Timestamp time.Time
}

// GraphWatcher watches a single graph document for modification.
type GraphWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan ChangeEvent
}

// NewGraphWatcher creates a watcher for the given graph document path.
func NewGraphWatcher(path string) (*GraphWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &GraphWatcher{
		watcher: fsw,
		path:    filepath.Clean(path),
		events:  make(chan ChangeEvent, 16),
	}, nil
}

// Start begins watching. The containing directory is watched rather
// than the file itself so atomic replaces (rename over the file) are
// still observed.
func (gw *GraphWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(gw.path)
	if err := gw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	logging.Info("watching graph document", "path", gw.path)
	go gw.processEvents(ctx)
	return nil
}

// Events returns the raw (un-debounced) change channel.
func (gw *GraphWatcher) Events() <-chan ChangeEvent {
	return gw.events
}

// Close stops the watcher.
func (gw *GraphWatcher) Close() error {
	return gw.watcher.Close()
}

func (gw *GraphWatcher) processEvents(ctx context.Context) {
	defer close(gw.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-gw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != gw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("graph document changed", "op", event.Op.String())
			select {
			case gw.events <- ChangeEvent{Path: gw.path, Timestamp: time.Now()}:
			default:
				// A change is already pending; the debouncer will fold
				// this one into it anyway.
			}
		case err, ok := <-gw.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "error", err)
		}
	}
}
