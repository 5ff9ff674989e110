package file

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/pdfchat/internal/logger"
)

// Reloader is implemented by stores whose cached contents can be dropped.
type Reloader interface {
	Reload()
}

// PromptWatcher reloads a prompt store whenever a prompt file in its
// directory is written, created, removed or renamed.
type PromptWatcher struct {
	dir      string
	store    Reloader
	watcher  *fsnotify.Watcher
	onReload func(name string)
}

// NewPromptWatcher watches dir and calls store.Reload on prompt changes.
// onReload, if non-nil, is called with the changed prompt name.
func NewPromptWatcher(dir string, store Reloader, onReload func(name string)) (*PromptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &PromptWatcher{
		dir:      dir,
		store:    store,
		watcher:  w,
		onReload: onReload,
	}, nil
}

// Run processes events until ctx is cancelled or the watcher is closed.
func (w *PromptWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, changed := promptChange(event)
			if !changed {
				continue
			}
			logger.Debug("Prompt %s changed (%s), reloading", name, event.Op)
			w.store.Reload()
			if w.onReload != nil {
				w.onReload(name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("prompt watcher: %v", err)
		}
	}
}

// Close stops watching.
func (w *PromptWatcher) Close() error {
	return w.watcher.Close()
}

// promptChange reports whether event touches a prompt file and returns
// the prompt name. Editor swap files, hidden files and chmod-only events
// are ignored.
func promptChange(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || filepath.Ext(base) != ".txt" {
		return "", false
	}
	return strings.TrimSuffix(base, ".txt"), true
}
