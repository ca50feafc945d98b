package scene

import (
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a scene file whenever it changes on disk and delivers the
// result on Updates. It never touches GL state; the render loop drains
// Updates between frames.
type Watcher struct {
	path    string
	logger  *log.Logger
	watcher *fsnotify.Watcher
	updates chan *SceneFile

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// WatchSceneFile starts watching path. The containing directory is watched
// so editors that replace the file on save are still seen.
func WatchSceneFile(path string, logger *log.Logger) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		logger:  logger,
		watcher: fsWatch,
		updates: make(chan *SceneFile, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Updates delivers the most recent successfully decoded scene. A pending
// update that was not consumed is replaced by a newer one.
func (w *Watcher) Updates() <-chan *SceneFile {
	return w.updates
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("scene watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	sf, err := LoadSceneFile(w.path)
	if err != nil {
		// A half-written file fails to decode; the final write triggers
		// another event.
		w.logger.Warn("scene reload failed", "path", w.path, "err", err)
		return
	}

	select {
	case <-w.updates:
	default:
	}
	w.updates <- sf
	w.logger.Info("scene reloaded", "path", w.path, "lights", len(sf.Lights), "objects", len(sf.Objects))
}
