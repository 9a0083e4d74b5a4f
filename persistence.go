package appconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/configflow/go-client-sdk/util"
)

// PersistenceStore stores the last known-good configuration document.
// It is consulted once at startup to seed the initial snapshot and
// written on every accepted update; it is never read mid-session.
type PersistenceStore interface {
	Load() (document []byte, found bool, err error)
	Save(document []byte) error
}

// FilePersistence keeps the last good document in a single JSON file.
type FilePersistence struct {
	path string
}

func NewFilePersistence(path string) (*FilePersistence, error) {
	if path == "" {
		return nil, fmt.Errorf("persistence file path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating persistence directory: %w", err)
	}
	return &FilePersistence{path: path}, nil
}

func (f *FilePersistence) Load() ([]byte, bool, error) {
	raw, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !json.Valid(raw) {
		return nil, false, fmt.Errorf("persisted document at %s is not valid JSON", f.path)
	}
	return raw, true, nil
}

// Save writes via a temp file and rename so a crash mid-write cannot
// leave a truncated document behind.
func (f *FilePersistence) Save(document []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, document, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// bootstrapWatcher feeds configuration documents from a local file into
// the update path, re-reading on every write to the file. It is the
// offline-mode ConfigSource: no network, the file is authoritative.
type bootstrapWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	apply   func(document []byte, etag string) error
}

func newBootstrapWatcher(path string, apply func(document []byte, etag string) error) (*bootstrapWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating bootstrap file watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace files by rename
	// and a watch on the old inode would go stale.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching bootstrap directory: %w", err)
	}
	return &bootstrapWatcher{path: path, watcher: watcher, apply: apply}, nil
}

// start reads the file once, then applies it again on every change until
// the context is cancelled. Invalid intermediate states (an editor
// mid-save) are logged and skipped; the last good snapshot stays.
func (b *bootstrapWatcher) start(ctx context.Context) error {
	if err := b.applyFile(); err != nil {
		return err
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-b.watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(b.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := b.applyFile(); err != nil {
					util.Warnf("Bootstrap file change was not applied: %s", err)
				}
			case err, ok := <-b.watcher.Errors:
				if !ok {
					return
				}
				util.Warnf("Bootstrap file watcher error: %s", err)
			}
		}
	}()
	return nil
}

func (b *bootstrapWatcher) applyFile() error {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return fmt.Errorf("reading bootstrap file: %w", err)
	}
	return b.apply(raw, "")
}

func (b *bootstrapWatcher) Close() error {
	return b.watcher.Close()
}
