// Package watcher reports changes to the usage cache file.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// fileState identifies one version of the cache file. The file is replaced
// by rename, so size and mtime change together.
type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

type Watcher struct {
	path         string
	last         fileState
	mu           sync.Mutex
	pollInterval time.Duration
	onChange     func()
	stop         chan struct{}
	wg           sync.WaitGroup
}

func New(path string, pollInterval time.Duration, onChange func()) *Watcher {
	return &Watcher{
		path:         path,
		pollInterval: pollInterval,
		onChange:     onChange,
		stop:         make(chan struct{}),
	}
}

// Prime records the current state of the file without reporting it.
func (w *Watcher) Prime() {
	st := stat(w.path)
	w.mu.Lock()
	w.last = st
	w.mu.Unlock()
}

// Start begins watching with fsnotify + polling fallback.
func (w *Watcher) Start() error {
	// Watch the directory: a rename swaps the file's inode, which would
	// silently end a watch on the file itself.
	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		if addErr := fsw.Add(filepath.Dir(w.path)); addErr != nil {
			log.Debugf("watcher: %v", addErr)
			fsw.Close()
		} else {
			w.wg.Add(1)
			go w.watchEvents(fsw)
		}
	}

	// Polling fallback (always runs as safety net)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				w.check()
			case <-w.stop:
				return
			}
		}
	}()

	return nil
}

func (w *Watcher) watchEvents(fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == base &&
				event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.check()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Debugf("watcher: %v", err)
		case <-w.stop:
			fsw.Close()
			return
		}
	}
}

// Stop signals goroutines to exit and waits for them to finish.
func (w *Watcher) Stop() {
	close(w.stop)
	w.wg.Wait()
}

func (w *Watcher) check() {
	st := stat(w.path)

	w.mu.Lock()
	changed := !st.equal(w.last)
	w.last = st
	w.mu.Unlock()

	if changed && w.onChange != nil {
		w.onChange()
	}
}

func (a fileState) equal(b fileState) bool {
	return a.exists == b.exists && a.size == b.size && a.modTime.Equal(b.modTime)
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}
