// Package loader assembles bounded text corpora from category directories.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/interfaces"
)

const (
	DefaultFilesPerDir   = 3
	DefaultMaxExcerpt    = 100000
	DefaultMaxPDFExcerpt = 1000
	defaultTitle         = "No Title"
)

// Excerpt is one file's contribution to a corpus
type Excerpt struct {
	Dir   string
	File  string
	Label string
	Text  string
}

// Corpus is an ordered list of excerpts
type Corpus []Excerpt

// String joins the labelled excerpts with blank lines
func (c Corpus) String() string {
	parts := make([]string, len(c))
	for i, e := range c {
		parts[i] = e.Label
	}
	return strings.Join(parts, "\n\n")
}

// Options bounds how much raw material enters a corpus
type Options struct {
	FilesPerDir   int
	MaxExcerpt    int
	MaxPDFExcerpt int
}

// Loader reads the newest files of each category directory
type Loader struct {
	extractor interfaces.PDFExtractor
	options   Options
	logger    arbor.ILogger
}

// NewLoader creates a loader. Zero options take the defaults.
func NewLoader(extractor interfaces.PDFExtractor, options Options, logger arbor.ILogger) *Loader {
	if options.FilesPerDir <= 0 {
		options.FilesPerDir = DefaultFilesPerDir
	}
	if options.MaxExcerpt <= 0 {
		options.MaxExcerpt = DefaultMaxExcerpt
	}
	if options.MaxPDFExcerpt <= 0 {
		options.MaxPDFExcerpt = DefaultMaxPDFExcerpt
	}
	return &Loader{
		extractor: extractor,
		options:   options,
		logger:    logger,
	}
}

// Load builds a corpus from dirs in order. Each directory contributes at most
// FilesPerDir excerpts, taken newest first; files that fail to load do not
// count toward that limit. Missing directories are skipped.
func (l *Loader) Load(ctx context.Context, dirs ...string) Corpus {
	var corpus Corpus

	for _, dir := range dirs {
		files, err := newestFirst(dir)
		if err != nil {
			l.logger.Debug().Err(err).Str("dir", dir).Msg("Skipping category directory")
			continue
		}

		loaded := 0
		for _, name := range files {
			if loaded >= l.options.FilesPerDir {
				break
			}
			if ctx.Err() != nil {
				return corpus
			}

			excerpt, ok, err := l.loadFile(ctx, dir, name)
			if err != nil {
				l.logger.Debug().Err(err).Str("dir", dir).Str("file", name).Msg("Skipping unreadable file")
				continue
			}
			if !ok {
				continue
			}

			corpus = append(corpus, excerpt)
			loaded++
		}
	}

	l.logger.Debug().Int("dirs", len(dirs)).Int("excerpts", len(corpus)).Msg("Corpus loaded")
	return corpus
}

func (l *Loader) loadFile(ctx context.Context, dir, name string) (Excerpt, bool, error) {
	path := filepath.Join(dir, name)
	dirName := filepath.Base(dir)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case ext == ".json" && !strings.Contains(name, "state"):
		data, err := os.ReadFile(path)
		if err != nil {
			return Excerpt{}, false, err
		}
		var doc struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return Excerpt{}, false, fmt.Errorf("failed to decode %s: %w", name, err)
		}
		title := doc.Title
		if title == "" {
			title = defaultTitle
		}
		text := flatten(Truncate(doc.Content, l.options.MaxExcerpt))
		return Excerpt{
			Dir:   dirName,
			File:  name,
			Label: fmt.Sprintf("[%s] %s: %s", dirName, title, text),
			Text:  text,
		}, true, nil

	case ext == ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return Excerpt{}, false, err
		}
		text := flatten(Truncate(string(data), l.options.MaxExcerpt))
		return Excerpt{
			Dir:   dirName,
			File:  name,
			Label: fmt.Sprintf("[%s/%s] %s", dirName, name, text),
			Text:  text,
		}, true, nil

	case ext == ".pdf":
		if l.extractor == nil {
			return Excerpt{}, false, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Excerpt{}, false, err
		}
		raw, err := l.extractor.ExtractText(ctx, data)
		if err != nil {
			return Excerpt{}, false, err
		}
		if strings.TrimSpace(raw) == "" {
			return Excerpt{}, false, nil
		}
		text := flatten(Truncate(raw, l.options.MaxPDFExcerpt))
		return Excerpt{
			Dir:   dirName,
			File:  name,
			Label: fmt.Sprintf("[%s] PDF: %s", dirName, text),
			Text:  text,
		}, true, nil
	}

	return Excerpt{}, false, nil
}

// newestFirst lists regular files in dir sorted by modification time, newest
// first, ties broken by name
func newestFirst(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		name string
		mod  int64
	}
	files := make([]fileInfo, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{name: entry.Name(), mod: info.ModTime().UnixNano()})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].mod != files[j].mod {
			return files[i].mod > files[j].mod
		}
		return files[i].name < files[j].name
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

// Truncate returns at most n runes of s
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func flatten(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
