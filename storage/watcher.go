package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/syntaxis/errors"
	"github.com/teranos/syntaxis/logger"
)

// SeedWatcher re-imports seed files into the lexicon when they change
type SeedWatcher struct {
	store          *LexiconStore
	watcher        *fsnotify.Watcher
	files          map[string]bool // explicitly watched files
	dirs           map[string]bool // every seed file inside is watched
	pending        map[string]bool
	onImport       func(path string, count int, err error)
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
	logger         *zap.SugaredLogger
}

// NewSeedWatcher watches seed files and directories of seed files.
// Files are watched through their directory since editors replace files
// on save.
func NewSeedWatcher(store *LexiconStore, paths []string) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	sw := &SeedWatcher{
		store:          store,
		watcher:        watcher,
		files:          make(map[string]bool),
		dirs:           make(map[string]bool),
		pending:        make(map[string]bool),
		debouncePeriod: 300 * time.Millisecond,
		done:           make(chan struct{}),
		logger:         logger.ComponentLogger("seeds"),
	}

	watched := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "seed path %s", p)
		}
		dir := p
		if info.IsDir() {
			sw.dirs[p] = true
		} else {
			sw.files[p] = true
			dir = filepath.Dir(p)
		}
		if watched[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		watched[dir] = true
	}

	return sw, nil
}

// OnImport registers a callback run after every import attempt
func (sw *SeedWatcher) OnImport(fn func(path string, count int, err error)) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.onImport = fn
}

// Start begins watching for seed file changes
func (sw *SeedWatcher) Start() {
	go sw.watchLoop()
}

func (sw *SeedWatcher) watchLoop() {
	for {
		select {
		case <-sw.done:
			return
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !sw.watches(event.Name) {
				continue
			}
			sw.logger.Debugw("Seed file changed",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			sw.schedule(filepath.Clean(event.Name))

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warnw("Seed watcher error", logger.FieldError, err)
		}
	}
}

func (sw *SeedWatcher) watches(name string) bool {
	name = filepath.Clean(name)
	if sw.files[name] {
		return true
	}
	return sw.dirs[filepath.Dir(name)] && IsSeedFile(name)
}

// schedule debounces bursts of writes into one import per file
func (sw *SeedWatcher) schedule(path string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	sw.pending[path] = true
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debouncePeriod, sw.flush)
}

func (sw *SeedWatcher) flush() {
	sw.mu.Lock()
	paths := make([]string, 0, len(sw.pending))
	for p := range sw.pending {
		paths = append(paths, p)
	}
	sw.pending = make(map[string]bool)
	callback := sw.onImport
	sw.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		n, err := sw.importFile(p)
		if err != nil {
			sw.logger.Errorw("Seed import failed", logger.FieldFile, p, logger.FieldError, err)
		} else {
			sw.logger.Infow("Seed file re-imported", logger.FieldFile, p, logger.FieldCount, n)
		}
		if callback != nil {
			callback(p, n, err)
		}
	}
}

func (sw *SeedWatcher) importFile(path string) (int, error) {
	sf, err := LoadSeedFile(path)
	if err != nil {
		return 0, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return sw.store.Seed(ctx, sf)
}

// Stop stops watching
func (sw *SeedWatcher) Stop() error {
	sw.mu.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.mu.Unlock()
	close(sw.done)
	return sw.watcher.Close()
}
