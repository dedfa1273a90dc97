package collectors

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/loader"
)

func card(topic, title, body string) string {
	return `<button><div>📰 ` + topic + `</div><div>━━━━━━</div><div>` + title + `</div><p>` + body + `</p><span>👁 1.2k</span><div>ignored tail</div></button>`
}

func streamPage(cards ...string) string {
	return `<html><body><button>Refresh</button>` + strings.Join(cards, "") + `</body></html>`
}

func TestParseAINewsCard(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.AINewsItem
		ok   bool
	}{
		{
			name: "full card",
			text: "📰 LLM\n━━━━\nModel X released\nBeats benchmarks\nOpen weights\n👁 320\ntrailing",
			want: models.AINewsItem{Topic: "LLM", Title: "Model X released", Content: "Beats benchmarks Open weights"},
			ok:   true,
		},
		{
			name: "no content",
			text: "📰 Chips\nNew fab announced\n👁 10",
			want: models.AINewsItem{Topic: "Chips", Title: "New fab announced"},
			ok:   true,
		},
		{
			name: "no title",
			text: "📰 Chips\n──────\n👁 10",
			want: models.AINewsItem{Topic: "Chips"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := ParseAINewsCard(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, item)
		})
	}
}

func TestParseAINewsCards(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(streamPage(
		card("LLM", "Model X released", "Beats benchmarks"),
		card("Robotics", "Humanoid pilots", "Factories expand trials"),
	)))
	require.NoError(t, err)

	items := ParseAINewsCards(doc)
	require.Len(t, items, 2)
	assert.Equal(t, models.AINewsItem{Topic: "LLM", Title: "Model X released", Content: "Beats benchmarks"}, items[0])
	assert.Equal(t, "Humanoid pilots", items[1].Title)
}

func TestAINewsCollector_SnapshotEquality(t *testing.T) {
	deps, _ := newTestDeps(t, nil)
	renderer := &stubRenderer{}
	deps.Renderer = renderer
	url := deps.Config.Collectors.AINews.URL

	clock := testNow
	deps.Now = func() time.Time { return clock }
	collector := NewAINewsCollector(deps)

	a := card("LLM", "Model X released", "Beats benchmarks")
	b := card("Robotics", "Humanoid pilots", "Factories expand trials")

	renderer.set(url, streamPage(a, b))
	first, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Count(models.ItemSaved))
	assert.Equal(t, []string{"ai_trend_1792393200.json"}, categoryFiles(t, deps, models.CategoryAINews))

	clock = clock.Add(time.Hour)
	identical, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, identical.Count(models.ItemSaved))
	assert.Equal(t, 1, identical.Count(models.ItemSkipped))
	assert.Len(t, categoryFiles(t, deps, models.CategoryAINews), 1)

	clock = clock.Add(time.Hour)
	renderer.set(url, streamPage(b, a))
	reordered, err := collector.Collect(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, reordered.Count(models.ItemSaved), "a reordered list counts as changed")
	assert.Len(t, categoryFiles(t, deps, models.CategoryAINews), 2)
}

func TestAINewsCollector_NoCards(t *testing.T) {
	deps, _ := newTestDeps(t, nil)
	renderer := &stubRenderer{}
	renderer.set(deps.Config.Collectors.AINews.URL, streamPage())
	deps.Renderer = renderer

	report, err := NewAINewsCollector(deps).Collect(t.Context())
	require.NoError(t, err)
	assert.Empty(t, report.Items)
	assert.Empty(t, categoryFiles(t, deps, models.CategoryAINews))
}

func TestRenderAINewsItems(t *testing.T) {
	got := RenderAINewsItems([]models.AINewsItem{
		{Topic: "LLM", Title: "Model X released", Content: "Beats benchmarks"},
		{Title: "Humanoid pilots"},
	})
	assert.Equal(t, "[LLM] Model X released: Beats benchmarks\nHumanoid pilots", got)
}

func TestAINewsCollector_SnapshotReachesCorpus(t *testing.T) {
	deps, _ := newTestDeps(t, nil)
	renderer := &stubRenderer{}
	renderer.set(deps.Config.Collectors.AINews.URL, streamPage(
		card("LLM", "GPT-6 released", "Reasoning gains"),
		card("Robotics", "Humanoid pilots", "Factories expand trials"),
	))
	deps.Renderer = renderer

	report, err := NewAINewsCollector(deps).Collect(t.Context())
	require.NoError(t, err)
	require.Equal(t, 1, report.Count(models.ItemSaved))

	corpus := loader.NewLoader(&stubExtractor{}, loader.Options{}, deps.Logger).
		Load(t.Context(), deps.Writer.Dir(models.CategoryAINews))
	require.Len(t, corpus, 1)
	assert.Contains(t, corpus.String(), "[LLM] GPT-6 released: Reasoning gains")
	assert.Contains(t, corpus.String(), "[Robotics] Humanoid pilots")
}
