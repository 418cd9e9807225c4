package stlin

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-validates ST files as they change on disk.
type Watcher struct {
	engine     *Engine
	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching bool
}

// NewWatcher creates a watcher over the given directories. Call Start to
// begin receiving events.
func NewWatcher(engine *Engine, dirs []string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{engine: engine, watcher: fw, watchDirs: dirs}, nil
}

func (w *Watcher) Start() error {
	if w.isWatching {
		return fmt.Errorf("already watching")
	}

	for _, dir := range w.watchDirs {
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.isWatching = true
	go w.watchLoop()
	return nil
}

func (w *Watcher) Stop() error {
	if !w.isWatching {
		log.Println("not watching")
	}

	w.isWatching = false
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	for w.isWatching {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !strings.HasSuffix(event.Name, ".st") && !strings.HasSuffix(event.Name, ".pou") {
		return
	}

	// wait for a while after file change to consider multiple changes as one
	time.Sleep(100 * time.Millisecond)
	res := validateFile(w.engine, event.Name)
	if res.OK {
		log.Printf("%s: %s", res.Path, res.Reason)
	} else {
		log.Printf("%s: FAILED: %s", res.Path, res.Reason)
	}
}
