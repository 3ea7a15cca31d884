package assets

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hubastard/lumen/engine/core"
)

// Watcher reports shader files that were written in a directory. It never
// touches GL: the render thread drains it once per frame and recompiles.
type Watcher struct {
	fsw     *fsnotify.Watcher
	changed chan string
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewWatcher starts watching dir (non-recursively).
func NewWatcher(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	w := &Watcher{
		fsw:     fsw,
		changed: make(chan string, 64),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			// Editors often save by creating a new file and renaming it over.
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			select {
			case w.changed <- filepath.Base(e.Name):
			default:
				core.LogWarn("shader watcher: dropping change of %s, queue full", e.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			core.LogError("shader watcher: %v", err)
		case <-w.done:
			return
		}
	}
}

// Drain returns the distinct file names changed since the last call, sorted.
// It never blocks.
func (w *Watcher) Drain() []string {
	seen := map[string]bool{}
	for {
		select {
		case name := <-w.changed:
			seen[name] = true
		default:
			out := make([]string, 0, len(seen))
			for name := range seen {
				out = append(out, name)
			}
			sort.Strings(out)
			return out
		}
	}
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	err := errors.New("shader watcher already closed")
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}
