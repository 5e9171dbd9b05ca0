package persona

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a catalog whenever its override file changes. Sessions
// already created keep the prompts they were cast with.
type Watcher struct {
	catalog *Catalog
	path    string

	watcher *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}

	// reloaded receives after every reload attempt; used by tests.
	reloaded chan error
}

// Watch loads path into c and keeps it in sync. The directory is watched
// rather than the file so editors that replace the file are handled.
func Watch(c *Catalog, path string) (*Watcher, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create personas directory: %w", err)
	}
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		catalog:  c,
		path:     path,
		watcher:  fw,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		reloaded: make(chan error, 1),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			err := w.catalog.LoadFile(w.path)
			if err != nil {
				log.Printf("[persona] WARNING: reload failed, keeping previous styles: %v", err)
			}
			select {
			case w.reloaded <- err:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[persona] watcher error: %v", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	<-w.stopped
	return err
}
