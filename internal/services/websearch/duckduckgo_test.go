package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const resultsPage = `<html><body>
<div class="result result--ad"><a class="result__a" href="https://ads.example.com">Sponsored</a></div>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fwww.reuters.com%2Fmarkets%2Fipo&rut=abc">India IPO market heats up</a>
  <a class="result__snippet">Record   listings
   expected this quarter.</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/europe">Europe IPO pipeline</a>
  <div class="result__snippet">Frankfurt and Amsterdam lead.</div>
</div>
<div class="result">
  <a class="result__a" href="https://example.org/third">Third</a>
</div>
</body></html>`

func TestParseResults(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resultsPage))
	require.NoError(t, err)

	results := ParseResults(doc, 2)
	require.Len(t, results, 2)

	assert.Equal(t, "India IPO market heats up", results[0].Title)
	assert.Equal(t, "https://www.reuters.com/markets/ipo", results[0].URL)
	assert.Equal(t, "Record listings expected this quarter.", results[0].Snippet)
	assert.Equal(t, "https://example.org/europe", results[1].URL)
}

func TestSearch_PostsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Cathie Wood 2026 news", r.PostForm.Get("q"))
		assert.Equal(t, "augur-test", r.Header.Get("User-Agent"))
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	searcher := NewDuckDuckGo("augur-test", arbor.NewLogger(), WithBaseURL(server.URL))
	results, err := searcher.Search(context.Background(), "Cathie Wood 2026 news", 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearch_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewDuckDuckGo("", arbor.NewLogger(), WithBaseURL(server.URL)).Search(context.Background(), "q", 3)
	assert.Error(t, err)
}
