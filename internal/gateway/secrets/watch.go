package secrets

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the cache whenever the secret file changes. The parent
// directory is watched so editors and atomic renames are seen too. It blocks
// until ctx is done.
func (s *FileSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	name := filepath.Base(s.path)
	s.logger.Info("watching secrets file", "path", s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			s.logger.Debug("secrets file changed", "op", ev.Op.String())
			s.Invalidate()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("secrets watcher error", "err", err)
		}
	}
}
