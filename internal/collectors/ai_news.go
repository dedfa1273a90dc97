package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ledger"
)

var errNoRenderer = errors.New("headless browser is not available")

// AINewsCollector snapshots the AI news stream. A snapshot is only written
// when its card list differs from the newest stored snapshot.
type AINewsCollector struct {
	base
}

func NewAINewsCollector(deps *Deps) *AINewsCollector {
	return &AINewsCollector{base{name: "ai_news", category: models.CategoryAINews, deps: deps}}
}

func (c *AINewsCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	if c.deps.Renderer == nil {
		return report.Finish(), errNoRenderer
	}
	cfg := c.deps.Config.Collectors.AINews

	page, err := c.deps.Renderer.Render(ctx, cfg.URL, cfg.WaitTime.Std())
	if err != nil {
		return report.Finish(), &FetchError{Source: c.name, URL: cfg.URL, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return report.Finish(), &ParseError{Source: c.name, Err: err}
	}

	items := ParseAINewsCards(doc)
	if len(items) == 0 {
		c.deps.Logger.Warn().Str("url", cfg.URL).Msg("No AI news cards found")
		return report.Finish(), nil
	}

	now := c.deps.now()
	id := fmt.Sprintf("ai_trend_%d", now.Unix())

	dup, err := ledger.IsDuplicateSnapshot(c.deps.Writer.Dir(c.category), items, snapshotItems)
	if err != nil {
		return report.Finish(), err
	}
	if dup {
		report.Skipped(id, models.ReasonUnchanged)
		return report.Finish(), nil
	}

	record := &models.SourceRecord{
		Category:  c.category,
		ID:        id,
		Title:     "AI News Stream",
		Content:   RenderAINewsItems(items),
		Source:    "AI News Stream",
		CreatedAt: now,
		AINews:    &models.AINewsDetail{Items: items},
	}
	if _, err := c.deps.Writer.WriteRecord(record); err != nil {
		report.Failed(id, err)
		return report.Finish(), nil
	}

	c.deps.Logger.Info().Str("id", id).Int("cards", len(items)).Msg("AI news snapshot saved")
	report.Saved(id)
	return report.Finish(), nil
}

func snapshotItems(data []byte) ([]models.AINewsItem, error) {
	var record models.SourceRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.AINews == nil {
		return nil, nil
	}
	return record.AINews.Items, nil
}

// RenderAINewsItems flattens cards into "[topic] title: content" lines
func RenderAINewsItems(items []models.AINewsItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := item.Title
		if item.Topic != "" {
			line = "[" + item.Topic + "] " + line
		}
		if item.Content != "" {
			line += ": " + item.Content
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ParseAINewsCards reads every button that renders a news card
func ParseAINewsCards(doc *goquery.Document) []models.AINewsItem {
	var items []models.AINewsItem
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		text := innerText(s)
		if !strings.Contains(text, "📰") || !strings.Contains(text, "👁") {
			return
		}
		if item, ok := ParseAINewsCard(text); ok {
			items = append(items, item)
		}
	})
	return items
}

// ParseAINewsCard parses one card: the 📰 line is the topic, the first other
// line the title, and the rest up to the 👁 counter the content
func ParseAINewsCard(text string) (models.AINewsItem, bool) {
	var (
		item    models.AINewsItem
		content []string
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "📰"):
			item.Topic = strings.TrimSpace(strings.TrimPrefix(line, "📰"))
		case strings.Contains(line, "━━") || strings.Contains(line, "──"):
			continue
		case strings.Contains(line, "👁"):
			item.Content = strings.Join(content, " ")
			return item, item.Title != ""
		case item.Title == "":
			item.Title = line
		default:
			content = append(content, line)
		}
	}
	item.Content = strings.Join(content, " ")
	return item, item.Title != ""
}

var blockElements = map[string]bool{
	"br": true, "div": true, "p": true, "li": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "tr": true,
}

// innerText approximates rendered text, breaking lines at block elements
func innerText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if blockElements[n.Data] {
				b.WriteString("\n")
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			b.WriteString("\n")
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}
