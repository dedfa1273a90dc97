package collectors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/models"
)

var testNow = time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC)

// hitCounter counts requests per path
type hitCounter struct {
	mu   sync.Mutex
	hits map[string]int
}

func (h *hitCounter) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hits == nil {
		h.hits = map[string]int{}
	}
	h.hits[path]++
}

func (h *hitCounter) get(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[path]
}

func newTestDeps(t *testing.T, handler http.Handler) (*Deps, *httptest.Server) {
	t.Helper()

	var srv *httptest.Server
	if handler != nil {
		srv = httptest.NewServer(handler)
		t.Cleanup(srv.Close)
	}

	config := common.NewDefaultConfig()
	config.Data.Dir = t.TempDir()
	if srv != nil {
		config.Collectors.Saveticker.BaseURL = srv.URL
	}

	logger := arbor.NewLogger()
	fetcher := NewFetcher("augur-test", 5*time.Second, logger, WithRateLimit(1000))
	deps := &Deps{
		Config:     config,
		Writer:     NewWriter(config.Data.Dir),
		Fetcher:    fetcher,
		Saveticker: NewSaveticker(fetcher, config.Collectors.Saveticker),
		Logger:     logger,
		Now:        func() time.Time { return testNow },
		Sleep:      func(ctx context.Context, d time.Duration) error { return ctx.Err() },
	}
	return deps, srv
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func categoryFiles(t *testing.T, deps *Deps, category models.Category) []string {
	t.Helper()
	entries, err := os.ReadDir(deps.Writer.Dir(category))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func categoryPath(deps *Deps, category models.Category, name string) string {
	return filepath.Join(deps.Writer.Dir(category), name)
}

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	return s.text, s.err
}

type stubRenderer struct {
	mu    sync.Mutex
	pages map[string]string
	err   error
}

func (s *stubRenderer) set(url, page string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages == nil {
		s.pages = map[string]string{}
	}
	s.pages[url] = page
}

func (s *stubRenderer) Render(ctx context.Context, url string, wait time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.pages[url], nil
}

type stubSearcher struct {
	results map[string][]models.SearchResult
	err     error
	queries []string
}

func (s *stubSearcher) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	results := s.results[query]
	if len(results) > max {
		results = results[:max]
	}
	return results, nil
}

type extractorFunc func(data []byte) (string, error)

func (f extractorFunc) ExtractText(ctx context.Context, data []byte) (string, error) {
	return f(data)
}
