package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/renderer/metadata"
)

// Watcher reloads a properties file whenever it is written or replaced and
// delivers the parsed result on Updates. Apply them with Renderer.SetProps
// from the goroutine that renders.
type Watcher struct {
	path string

	fsnotify *fsnotify.Watcher
	updates  chan metadata.PartialProps
	errors   chan error
	done     chan struct{}

	mutex    sync.Mutex
	isClosed bool
	wg       sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so that
// editors replacing the file by rename are noticed too.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		updates:  make(chan metadata.PartialProps, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

// Updates delivers the properties after every successful reload.
func (w *Watcher) Updates() <-chan metadata.PartialProps {
	return w.updates
}

// Errors delivers read and parse failures. A failed reload keeps the
// previous properties in effect.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pp, err := Load(w.path)
			if err != nil {
				core.LogWarn("reloading %s: %v", w.path, err)
				w.send(nil, err)
				continue
			}
			core.LogDebug("reloaded %s", w.path)
			w.send(&pp, nil)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())
			w.send(nil, err)

		case <-w.done:
			return
		}
	}
}

// send delivers the newest result, dropping one that was never received.
func (w *Watcher) send(pp *metadata.PartialProps, err error) {
	if pp != nil {
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- *pp:
		case <-w.done:
		}
		return
	}
	select {
	case <-w.errors:
	default:
	}
	select {
	case w.errors <- err:
	case <-w.done:
	}
}

// Close stops watching. Updates and Errors are closed once the watch loop
// has exited.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.isClosed {
		return errors.New("config watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	err := w.fsnotify.Close()
	w.wg.Wait()
	close(w.updates)
	close(w.errors)
	return err
}
