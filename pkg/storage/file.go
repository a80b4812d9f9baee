package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// fileKeyPattern restricts keys to names that are safe as file names.
var fileKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// tempPrefix marks in-progress writes; watchers ignore these files.
const tempPrefix = ".tmp-"

// FileStorage stores each key as a file in a directory.
// Writes are atomic (write to a temp file, then rename).
type FileStorage struct {
	dir    string
	logger *zap.Logger

	mu       sync.Mutex
	closed   bool
	watcher  *fsnotify.Watcher
	watchers map[string]map[uint64]func()
	nextID   uint64
	done     chan struct{}
	wg       sync.WaitGroup
}

// FileOption configures FileStorage behavior.
type FileOption func(*FileStorage)

// WithFileLogger sets the logger used for watcher errors.
func WithFileLogger(logger *zap.Logger) FileOption {
	return func(f *FileStorage) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFile creates a file storage rooted at dir, creating it if needed.
func NewFile(dir string, opts ...FileOption) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}

	f := &FileStorage{
		dir:      dir,
		logger:   zap.NewNop(),
		watchers: make(map[string]map[uint64]func()),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Dir returns the storage directory.
func (f *FileStorage) Dir() string {
	return f.dir
}

// path maps a key to its file path.
func (f *FileStorage) path(key string) (string, error) {
	if !fileKeyPattern.MatchString(key) || strings.HasPrefix(key, tempPrefix) {
		return "", ErrInvalidKey
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStorage) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Get reads the file for key.
func (f *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if f.isClosed() {
		return nil, ErrClosed
	}
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set atomically replaces the file for key.
func (f *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	if f.isClosed() {
		return ErrClosed
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.dir, tempPrefix+key+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes the file for key.
func (f *FileStorage) Delete(ctx context.Context, key string) error {
	if f.isClosed() {
		return ErrClosed
	}
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Watch calls fn whenever the file for key is created, written or removed,
// by this process or any other. The directory watcher starts on first use.
func (f *FileStorage) Watch(key string, fn func()) (func(), error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(p)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil, ErrClosed
	}

	if f.watcher == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, err
		}
		if err := w.Add(f.dir); err != nil {
			w.Close()
			return nil, err
		}
		f.watcher = w
		f.wg.Add(1)
		go f.watchLoop(w)
	}

	f.nextID++
	id := f.nextID
	if f.watchers[name] == nil {
		f.watchers[name] = make(map[uint64]func())
	}
	f.watchers[name][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.watchers[name], id)
		})
	}, nil
}

// watchLoop dispatches fsnotify events to key watchers until Close.
func (f *FileStorage) watchLoop(w *fsnotify.Watcher) {
	defer f.wg.Done()

	for {
		select {
		case <-f.done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, tempPrefix) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			f.mu.Lock()
			fns := make([]func(), 0, len(f.watchers[name]))
			for _, fn := range f.watchers[name] {
				fns = append(fns, fn)
			}
			f.mu.Unlock()

			for _, fn := range fns {
				fn()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			f.logger.Warn("file storage watcher error", zap.String("dir", f.dir), zap.Error(err))
		}
	}
}

// Close stops the watcher. Files are left in place.
func (f *FileStorage) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	close(f.done)
	w := f.watcher
	f.watcher = nil
	f.mu.Unlock()

	var err error
	if w != nil {
		err = w.Close()
	}
	f.wg.Wait()
	return err
}
