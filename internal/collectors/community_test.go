package collectors

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/models"
)

func TestCommunityCollector(t *testing.T) {
	body := "Memory pricing keeps improving and hyperscaler orders look strong."
	hits := &hitCounter{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/community/list", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		assert.Equal(t, "user_news", r.URL.Query().Get("category"))
		w.Write([]byte(`{"posts":[
			{"id":11,"title":"DRAM cycle","content":"` + body + `"},
			{"id":12,"title":"Hi","content":"short"},
			{"id":13,"title":"Election week","content":"` + body + `"},
			{"id":14,"title":"Listed only","content":"` + body + `","author_name":"kim"}
		]}`))
	})
	mux.HandleFunc("/api/community/detail/11", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Write([]byte(`{"post":{"id":11,"title":"DRAM cycle","content":"` + body + `","author_name":"lee","view_count":42,"like_stats":{"like_count":7}}}`))
	})
	mux.HandleFunc("/api/community/detail/14", func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Write([]byte(`{}`))
	})
	deps, _ := newTestDeps(t, mux)
	collector := NewCommunityCollector(deps)

	report, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(models.ItemSaved))
	assert.Equal(t, 2, report.Count(models.ItemSkipped))

	var record models.SourceRecord
	require.NoError(t, json.Unmarshal([]byte(readFile(t, categoryPath(deps, models.CategoryCommunity, "11.json"))), &record))
	require.NotNil(t, record.Community)
	assert.Equal(t, "lee", record.Community.Author)
	assert.Equal(t, 42, record.Community.ViewCount)
	assert.Equal(t, 7, record.Community.Likes)

	var fallback models.SourceRecord
	require.NoError(t, json.Unmarshal([]byte(readFile(t, categoryPath(deps, models.CategoryCommunity, "14.json"))), &fallback))
	assert.Equal(t, "kim", fallback.Community.Author)

	again, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Count(models.ItemSaved))
	assert.Equal(t, 1, hits.get("/api/community/detail/11"))
}
