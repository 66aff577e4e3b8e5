package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// FileSource announces the contents of a file, without the trailing newline.
// A missing file reads as "". Changes are picked up through fsnotify and
// posted to the runtime, so they publish once the runtime drains its tasks.
type FileSource struct {
	sourceBase

	log  zerolog.Logger
	path string

	value   string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func (r *Runtime) NewFileSource(path string) (*FileSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("file source %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file source %q: %w", path, err)
	}

	// watch the directory, editors replace files on save
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("file source %q: %w", path, err)
	}

	s := &FileSource{
		sourceBase: sourceBase{rt: r},
		log:        r.log.With().Str("component", "file").Str("path", abs).Logger(),
		path:       abs,
		watcher:    watcher,
		done:       make(chan struct{}),
	}
	s.value = s.read()

	go s.watch()

	return s, nil
}

// Path returns the absolute path of the watched file.
func (s *FileSource) Path() string { return s.path }

// Value returns the contents read by the last Reset or change.
func (s *FileSource) Value() string { return s.value }

func (s *FileSource) watch() {
	defer close(s.done)

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			s.rt.Post(s.refresh)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (s *FileSource) refresh() {
	if s.destroyed {
		return
	}

	s.value = s.read()
	s.publish(s.value)
}

func (s *FileSource) read() string {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("read failed, keeping previous value")
		return s.value
	}

	return strings.TrimRight(string(data), "\r\n")
}

func (s *FileSource) Reset() {
	if s.destroyed {
		return
	}

	s.value = s.read()
	s.publish(s.value)
}

// Destroy stops watching the file and waits for the watch goroutine to exit.
func (s *FileSource) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true

	s.watcher.Close()
	<-s.done
	s.value = ""

	s.rt.owner.Release(s)
}
