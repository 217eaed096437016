package simplesurface

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ParameterWatcher reloads surface parameters from a TOML or YAML file whenever
// it changes on disk. Decoded values are queued and picked up on the frame
// thread through Pending.
type ParameterWatcher struct {
	path    string
	logger  Logger
	watcher *fsnotify.Watcher

	mu       sync.Mutex
	pending  *SurfaceParameters
	isClosed bool
	done     chan struct{}
	stopped  chan struct{}
}

// NewParameterWatcher watches path. The file does not need to exist yet; its
// directory does.
func NewParameterWatcher(path string, logger Logger) (*ParameterWatcher, error) {
	if logger == nil {
		logger = NewNopLogger()
	}
	path = filepath.Clean(path)
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace files on save, so the directory is watched instead
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	pw := &ParameterWatcher{
		path:    path,
		logger:  logger,
		watcher: fsWatch,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if _, err := os.Stat(path); err == nil {
		pw.reload()
	}
	go pw.start()
	return pw, nil
}

func (pw *ParameterWatcher) Path() string { return pw.path }

func (pw *ParameterWatcher) start() {
	defer close(pw.stopped)
	for {
		select {
		case e, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != pw.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pw.reload()
			}

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Errorf("parameter watcher: %v", err)

		case <-pw.done:
			return
		}
	}
}

func (pw *ParameterWatcher) reload() {
	params, err := ReadSurfaceParameters(pw.path)
	if err != nil {
		// Partial writes show up as decode errors; the next write event retries
		pw.logger.Debugf("parameter watcher: %v", err)
		return
	}
	pw.mu.Lock()
	pw.pending = &params
	pw.mu.Unlock()
}

// Pending returns the most recent unread parameters without blocking.
func (pw *ParameterWatcher) Pending() (SurfaceParameters, bool) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.pending == nil {
		return SurfaceParameters{}, false
	}
	p := *pw.pending
	pw.pending = nil
	return p, true
}

func (pw *ParameterWatcher) Close() error {
	pw.mu.Lock()
	if pw.isClosed {
		pw.mu.Unlock()
		return errors.New("parameter watcher already closed")
	}
	pw.isClosed = true
	pw.mu.Unlock()

	close(pw.done)
	err := pw.watcher.Close()
	<-pw.stopped
	return err
}

// ReadSurfaceParameters decodes a parameter file over the defaults and clamps
// the result.
func ReadSurfaceParameters(path string) (SurfaceParameters, error) {
	params := DefaultSurfaceParameters()
	data, err := os.ReadFile(path)
	if err != nil {
		return params, fmt.Errorf("read parameters %s: %w", path, err)
	}
	if len(data) == 0 {
		return params, fmt.Errorf("read parameters %s: empty file", path)
	}
	if err := decodeByExt(path, data, &params); err != nil {
		return params, fmt.Errorf("parse parameters %s: %w", path, err)
	}
	return params.Clamp(), nil
}
