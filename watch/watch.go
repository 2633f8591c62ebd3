// Package watch reports changes to a map file and the files it pulls in.
package watch

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 100 * time.Millisecond

type Watcher struct {
	watcher *fsnotify.Watcher
	mapPath string
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New watches the directory holding mapPath plus any extra directories.
// Events carries the path of every changed map, tile-set or image file in
// them.
func New(mapPath string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(mapPath)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	seen := make(map[string]bool)
	for _, dir := range append([]string{filepath.Dir(abs)}, dirs...) {
		dir = filepath.Clean(dir)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		mapPath: abs,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

// run reports a path once no event has touched it for the debounce period,
// so a burst of writes yields one event after the last of them.
func (w *Watcher) run() {
	defer close(w.done)
	pending := make(map[string]time.Time)
	timer := time.NewTimer(debounce)
	timer.Stop()
	armed := false

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			pending[event.Name] = time.Now()
			if !armed {
				timer.Reset(debounce)
				armed = true
			}
		case now := <-timer.C:
			armed = false
			var ready []string
			next := debounce
			for name, last := range pending {
				if wait := debounce - now.Sub(last); wait > 0 {
					next = min(next, wait)
					continue
				}
				ready = append(ready, name)
			}
			sort.Strings(ready)
			for _, name := range ready {
				delete(pending, name)
				select {
				case w.Events <- name:
				case <-w.closeCh:
					return
				}
			}
			if len(pending) > 0 {
				timer.Reset(next)
				armed = true
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			timer.Stop()
			return
		}
	}
}

func (w *Watcher) relevant(path string) bool {
	if abs, err := filepath.Abs(path); err == nil && abs == w.mapPath {
		return true
	}
	return isTilesetFile(path) || isImageFile(path)
}

func isTilesetFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".tsx"
}

func isImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}
