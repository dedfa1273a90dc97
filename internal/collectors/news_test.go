package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/models"
)

func newsPortal(hits *hitCounter) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/news/list", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Write([]byte(`{"news_list":[
			{"id":101,"title":"Fed signals patience on cuts"},
			{"id":102,"title":"대박"},
			{"id":103,"title":"Chip rumor lifts shares"},
			{"id":"104","title":"Oil slides on supply glut"}
		]}`))
	})
	mux.HandleFunc("/api/news/detail/101", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Write([]byte(`{"news":{"id":101,"title":"Fed signals patience on cuts","created_at":"2026-10-19T06:30:00Z",
			"content":[{"type":"text","content":"Officials held rates."},{"type":"image","content":"x.png"},{"type":"text","content":"Markets rallied."}],
			"source":"Reuters","tags":[{"name":"macro"},{"name":"fed"}],"author_name":"desk"}}`))
	})
	mux.HandleFunc("/api/news/detail/104", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Write([]byte(`{"news":{"id":"104","title":"Oil slides on supply glut","created_at":"2026-10-19 05:00:00","content":"Brent fell 3%."}}`))
	})
	return mux
}

func TestNewsCollector_DedupIsIdempotent(t *testing.T) {
	hits := &hitCounter{}
	deps, _ := newTestDeps(t, newsPortal(hits))
	collector := NewNewsCollector(deps)

	first, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Count(models.ItemSaved))
	assert.Equal(t, 2, first.Count(models.ItemSkipped))
	assert.ElementsMatch(t, []string{"101.json", "104.json"}, categoryFiles(t, deps, models.CategoryNews))

	second, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Count(models.ItemSaved))
	assert.Equal(t, 4, second.Count(models.ItemSkipped))

	// details are fetched once; the second run stops at the existence check
	assert.Equal(t, 1, hits.get("/api/news/detail/101"))
	assert.Equal(t, 1, hits.get("/api/news/detail/104"))
	assert.Equal(t, 2, hits.get("/api/news/list"))
}

func TestNewsCollector_RecordShape(t *testing.T) {
	deps, _ := newTestDeps(t, newsPortal(&hitCounter{}))
	_, err := NewNewsCollector(deps).Collect(t.Context())
	require.NoError(t, err)

	var record models.SourceRecord
	require.NoError(t, json.Unmarshal([]byte(readFile(t, categoryPath(deps, models.CategoryNews, "101.json"))), &record))

	assert.Equal(t, "101", record.ID)
	assert.Equal(t, "Officials held rates.\nMarkets rallied.", record.Content)
	assert.Equal(t, "Reuters", record.Source)
	require.NotNil(t, record.News)
	assert.Equal(t, []string{"macro", "fed"}, record.News.Tags)
	assert.Equal(t, "desk", record.News.Author)
	assert.Equal(t, time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC), record.CreatedAt)

	var plain models.SourceRecord
	require.NoError(t, json.Unmarshal([]byte(readFile(t, categoryPath(deps, models.CategoryNews, "104.json"))), &plain))
	assert.Equal(t, "Brent fell 3%.", plain.Content)
	assert.Equal(t, "saveticker", plain.Source)
	assert.Equal(t, "Unknown", plain.News.Author)
}

func TestNewsCollector_DetailFailureIsPerItem(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/news/list", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news_list":[{"id":1,"title":"Broken detail endpoint"},{"id":2,"title":"Working detail endpoint"}]}`))
	})
	mux.HandleFunc("/api/news/detail/1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/api/news/detail/2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news":{"id":2,"title":"Working detail endpoint","content":"ok"}}`))
	})
	deps, _ := newTestDeps(t, mux)

	report, err := NewNewsCollector(deps).Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(models.ItemFailed))
	assert.Equal(t, 1, report.Count(models.ItemSaved))
}

func TestNewsCollector_ListFailureIsReturned(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))

	_, err := NewNewsCollector(deps).Collect(t.Context())
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
}

type stubMarketNews struct {
	items []MarketNewsItem
	err   error
}

func (s *stubMarketNews) Name() string { return "finnhub" }

func (s *stubMarketNews) MarketNews(ctx context.Context) ([]MarketNewsItem, error) {
	return s.items, s.err
}

func TestNewsCollector_SecondaryFeed(t *testing.T) {
	deps, _ := newTestDeps(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"news_list":[]}`))
	}))
	deps.MarketNews = &stubMarketNews{items: []MarketNewsItem{
		{ID: "7", Headline: "Treasury yields climb", Summary: "Yields rose.", Publisher: "CNBC", Related: []string{"TLT"}},
		{ID: "8", Headline: "ok"},
		{Headline: "No identifier"},
	}}
	collector := NewNewsCollector(deps)

	report, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(models.ItemSaved))
	assert.Equal(t, []string{"finnhub-7.json"}, categoryFiles(t, deps, models.CategoryNews))

	again, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Count(models.ItemSaved))

	deps.MarketNews = &stubMarketNews{err: errors.New("quota exceeded")}
	degraded, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, degraded.Count(models.ItemFailed))
}
