//go:build !darwin

package watch

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/fsevents/errors"
	"github.com/grovetools/fsevents/logging"
)

// fsnotifyBackend watches recursively with fsnotify: every subdirectory is
// added explicitly, and directories created later are picked up from their
// create events.
type fsnotifyBackend struct {
	watcher *fsnotify.Watcher
	out     chan Event
	log     *logrus.Entry
}

func newBackend(roots []string, opts Options) (backend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create fsnotify watcher")
	}

	b := &fsnotifyBackend{
		watcher: watcher,
		out:     make(chan Event, 256),
		log:     logging.NewLogger("watcher"),
	}

	for _, root := range roots {
		if err := b.addRecursive(root); err != nil {
			watcher.Close()
			return nil, err
		}
	}

	go b.run()
	return b, nil
}

func (b *fsnotifyBackend) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.InvalidPath(path, err)
		}
		if d.IsDir() {
			if err := b.watcher.Add(path); err != nil {
				return errors.InvalidPath(path, err)
			}
		}
		return nil
	})
}

func (b *fsnotifyBackend) run() {
	defer close(b.out)
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := b.watcher.Add(ev.Name); err != nil {
						b.log.WithError(err).WithField("path", ev.Name).Warn("failed to watch new directory")
					}
				}
			}
			b.out <- Event{Path: ev.Name, Op: opFromFsnotify(ev.Op)}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			b.log.WithError(err).Warn("fsnotify error")
		}
	}
}

func (b *fsnotifyBackend) events() <-chan Event {
	return b.out
}

func (b *fsnotifyBackend) close() {
	b.watcher.Close()
}

func opFromFsnotify(op fsnotify.Op) Op {
	var out Op
	if op.Has(fsnotify.Create) {
		out |= OpCreate
	}
	if op.Has(fsnotify.Write) {
		out |= OpWrite
	}
	if op.Has(fsnotify.Remove) {
		out |= OpRemove
	}
	if op.Has(fsnotify.Rename) {
		out |= OpRename
	}
	if op.Has(fsnotify.Chmod) {
		out |= OpChmod
	}
	return out
}
