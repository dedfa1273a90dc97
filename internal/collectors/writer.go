package collectors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ledger"
	"github.com/ternarybob/augur/internal/services/loader"
)

// MaxBodyRunes bounds a record body at persistence time
const MaxBodyRunes = 100000

// Writer persists records and text reports under the data root. Each
// collector writes only into its own category directory.
type Writer struct {
	root string
}

// NewWriter creates a writer rooted at the data directory
func NewWriter(root string) *Writer {
	return &Writer{root: root}
}

// Root returns the data directory
func (w *Writer) Root() string {
	return w.root
}

// Dir returns the directory of a category
func (w *Writer) Dir(category models.Category) string {
	return filepath.Join(w.root, string(category))
}

// Exists reports whether name already exists in the category directory
func (w *Writer) Exists(category models.Category, name string) bool {
	_, err := os.Stat(filepath.Join(w.Dir(category), name))
	return err == nil
}

// RecordFile is the file name a record is stored under
func RecordFile(id string) string {
	return SafeFileName(id) + ".json"
}

// WriteRecord validates the record, bounds its body and writes <id>.json
func (w *Writer) WriteRecord(record *models.SourceRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}
	record.Content = loader.Truncate(record.Content, MaxBodyRunes)

	path := filepath.Join(w.Dir(record.Category), RecordFile(record.ID))
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	if err := ledger.WriteFileAtomic(path, data); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	return path, nil
}

// WriteText writes a plain-text report file, replacing any previous version
func (w *Writer) WriteText(category models.Category, name, text string) (string, error) {
	path := filepath.Join(w.Dir(category), name)
	if err := ledger.WriteFileAtomic(path, []byte(text)); err != nil {
		return "", &PersistenceError{Path: path, Err: err}
	}
	return path, nil
}

// SafeFileName keeps letters, digits, spaces, dashes and underscores
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := strings.TrimSpace(b.String())
	if safe == "" {
		return "untitled"
	}
	return safe
}
