// Package vocabulary loads vocabulary values from files, the Aiera API and
// redis, and keeps the vocabulary store current.
package vocabulary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/aiera-inc/aiera-mcp/domain/vocabulary"
	"github.com/aiera-inc/aiera-mcp/infrastructure/logging"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 250 * time.Millisecond

// FileSource reads vocabularies from a YAML or JSON document:
//
//	tickers: [AAPL:US, MSFT:US]
//	categories: [annual_report]
//	keywords: [guidance]
//
// Keys are parsed with vocabulary.ParseKind. Closed enumerations are
// compiled in and are ignored here.
type FileSource struct {
	path     string
	debounce time.Duration
}

// NewFileSource creates a source for the file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, debounce: DefaultDebounce}
}

// WithDebounce sets the delay between the last file event and the reload.
func (s *FileSource) WithDebounce(d time.Duration) *FileSource {
	s.debounce = d
	return s
}

// Name identifies the source.
func (s *FileSource) Name() string {
	return "file"
}

// Path returns the watched file.
func (s *FileSource) Path() string {
	return s.path
}

// Load reads and parses the file.
func (s *FileSource) Load(ctx context.Context) (map[vocabulary.Kind][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vocabulary.ErrSourceUnavailable, err)
	}
	return ParseDocument(data)
}

// ParseDocument parses a vocabulary document. YAML is a superset of JSON so
// one decoder serves both formats.
func ParseDocument(data []byte) (map[vocabulary.Kind][]string, error) {
	out := make(map[vocabulary.Kind][]string)
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse vocabulary document: %w", err)
	}
	for key, values := range doc {
		kind, err := vocabulary.ParseKind(key)
		if err != nil {
			return nil, err
		}
		if kind.Closed() {
			logging.Debug().
				Add(logging.FieldKind(kind.String())).
				Msg("ignoring values for compiled-in vocabulary")
			continue
		}
		out[kind] = append(out[kind], values...)
	}
	return out, nil
}

// Watch calls onChange after the file is written, created or renamed into
// place, until ctx is done. The parent directory is watched so that editors
// that replace the file atomically are seen.
func (s *FileSource) Watch(ctx context.Context, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(s.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				timer.Reset(s.debounce)
				continue
			}
			logging.Warn().
				Add(logging.Component("vocabulary")).
				Add(logging.ErrorField(err)).
				Msg("file watcher error")
		case <-timer.C:
			onChange(ctx)
		}
	}
}

var _ vocabulary.Source = (*FileSource)(nil)
