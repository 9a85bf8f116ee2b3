package api

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/store"
)

const seedDebounce = 100 * time.Millisecond

// SeedLoader reads a seed fixture file.
type SeedLoader func(path string) (model.Collection, error)

// SeedWatcher reloads the card store whenever the seed fixture changes on
// disk. Reloading discards in-memory edits: the fixture is the source of
// truth while watching.
type SeedWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	store   store.CardStore
	load    SeedLoader
	log     log.FieldLogger

	mu      sync.Mutex
	timer   *time.Timer
	stopCh  chan struct{}
	stopped bool // Once stopped, cannot restart
	running bool
}

// NewSeedWatcher creates a watcher for the seed file at path.
func NewSeedWatcher(path string, cardStore store.CardStore, load SeedLoader, logger log.FieldLogger) (*SeedWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve seed path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	return &SeedWatcher{
		watcher: watcher,
		path:    abs,
		store:   cardStore,
		load:    load,
		log:     logger.WithField("seed_file", abs),
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching. Editors often replace files rather than write them
// in place, so the parent directory is watched and events filtered by name.
func (sw *SeedWatcher) Start() error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	if sw.stopped {
		sw.mu.Unlock()
		return fmt.Errorf("seed watcher cannot be restarted after stop")
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(filepath.Dir(sw.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(sw.path), err)
	}

	go sw.run()
	return nil
}

// Stop stops watching for changes.
func (sw *SeedWatcher) Stop() error {
	sw.mu.Lock()
	if !sw.running || sw.stopped {
		sw.stopped = true
		sw.mu.Unlock()
		return nil
	}
	sw.running = false
	sw.stopped = true
	if sw.timer != nil {
		sw.timer.Stop()
		sw.timer = nil
	}
	sw.mu.Unlock()

	close(sw.stopCh)
	return sw.watcher.Close()
}

func (sw *SeedWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if sw.relevant(event) {
				sw.schedule()
			}

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.WithError(err).Warn("seed watcher error")

		case <-sw.stopCh:
			return
		}
	}
}

// relevant reports whether event means the seed file has new content.
// Removals are ignored: the store keeps its state until the file reappears.
func (sw *SeedWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != sw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

// schedule debounces reloads to coalesce the bursts editors produce on save.
func (sw *SeedWatcher) schedule() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if sw.stopped {
		return
	}
	if sw.timer != nil {
		sw.timer.Stop()
	}
	sw.timer = time.AfterFunc(seedDebounce, sw.reload)
}

func (sw *SeedWatcher) reload() {
	sw.mu.Lock()
	stopped := sw.stopped
	sw.mu.Unlock()
	if stopped {
		return
	}

	collection, err := sw.load(sw.path)
	if err != nil {
		// Keep serving the last good state; a half-saved file is common
		sw.log.WithError(err).Warn("seed reload failed, keeping current cards")
		return
	}
	sw.store.Reset(collection)
	sw.log.WithField("cards", collection.Len()).Info("seed reloaded")
}
