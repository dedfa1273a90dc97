// Package ledger records which source identifiers have already been collected.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
)

// CorruptSuffix is appended to a ledger file that could not be parsed
const CorruptSuffix = ".corrupt"

// Ledger is an append-only set of identifiers backed by a JSON array file.
// The whole file is read on Open and rewritten on every MarkSeen.
type Ledger struct {
	path   string
	logger arbor.ILogger
	mu     sync.RWMutex
	ids    []string
	seen   map[string]struct{}
}

// Option configures a Ledger
type Option func(*Ledger)

// WithLogger sets the logger used to report a recovered ledger
func WithLogger(logger arbor.ILogger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// Open loads the ledger at path. A missing file yields an empty ledger.
// A file that is not a JSON array is moved aside to path+CorruptSuffix and
// the ledger starts empty.
func Open(path string, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		path: path,
		seen: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return nil, fmt.Errorf("failed to read ledger %s: %w", path, err)
	}

	if len(data) == 0 {
		return l, nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return l, l.quarantine(err)
	}

	for _, id := range ids {
		if _, dup := l.seen[id]; dup {
			continue
		}
		l.seen[id] = struct{}{}
		l.ids = append(l.ids, id)
	}

	return l, nil
}

func (l *Ledger) quarantine(parseErr error) error {
	corrupt := l.path + CorruptSuffix
	if err := os.Rename(l.path, corrupt); err != nil {
		return fmt.Errorf("failed to move corrupt ledger %s aside: %w", l.path, err)
	}
	if l.logger != nil {
		l.logger.Warn().
			Err(parseErr).
			Str("path", l.path).
			Str("moved_to", corrupt).
			Msg("Ledger unreadable, starting empty")
	}
	return nil
}

// Path returns the backing file path
func (l *Ledger) Path() string {
	return l.path
}

// HasSeen reports whether id has been recorded
func (l *Ledger) HasSeen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// MarkSeen records id and persists the full ledger. Recording an id twice is a no-op.
// Callers must only mark an id after its record has been persisted.
func (l *Ledger) MarkSeen(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[id]; ok {
		return nil
	}

	ids := append(append([]string(nil), l.ids...), id)
	if err := writeJSONAtomic(l.path, ids); err != nil {
		return fmt.Errorf("failed to write ledger %s: %w", l.path, err)
	}

	l.ids = ids
	l.seen[id] = struct{}{}
	return nil
}

// Len returns the number of recorded identifiers
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// IDs returns a copy of the recorded identifiers in insertion order
func (l *Ledger) IDs() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.ids...)
}

func writeJSONAtomic(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers never observe a partial file
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
