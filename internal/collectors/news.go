package collectors

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

const newsDetailDelay = 300 * time.Millisecond

// NewsCollector pulls the newest portal headlines, then the secondary market
// feed. Items are filtered first, then skipped when <id>.json already exists.
type NewsCollector struct {
	base
}

func NewNewsCollector(deps *Deps) *NewsCollector {
	return &NewsCollector{base{name: "news", category: models.CategoryNews, deps: deps}}
}

func (c *NewsCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	logger := c.deps.Logger

	items, err := c.deps.Saveticker.ListNews(ctx)
	if err != nil {
		return report.Finish(), fmt.Errorf("failed to list news: %w", err)
	}

	for _, item := range items {
		id := string(item.ID)
		if id == "" {
			continue
		}
		if ok, reason := NewsFilter.Admit(item.Title, ""); !ok {
			logger.Debug().Str("id", id).Str("title", item.Title).Str("reason", reason).Msg("News skipped")
			report.Skipped(id, reason)
			continue
		}
		if c.deps.Writer.Exists(c.category, RecordFile(id)) {
			report.Skipped(id, models.ReasonDuplicate)
			continue
		}

		detail, err := c.deps.Saveticker.NewsDetail(ctx, id)
		if err != nil {
			logger.Warn().Err(err).Str("id", id).Msg("Failed to fetch news detail")
			report.Failed(id, err)
			continue
		}

		record := &models.SourceRecord{
			Category:  c.category,
			ID:        id,
			Title:     detail.Title,
			Content:   string(detail.Content),
			Source:    orDefault(detail.Source, "saveticker"),
			CreatedAt: parseTimestamp(detail.CreatedAt, c.deps.now()),
			News: &models.NewsDetail{
				Tags:   tagNames(detail.Tags),
				Author: orDefault(detail.AuthorName, "Unknown"),
			},
		}
		if record.Title == "" {
			record.Title = item.Title
		}
		if _, err := c.deps.Writer.WriteRecord(record); err != nil {
			report.Failed(id, err)
			continue
		}
		report.Saved(id)

		if err := c.deps.sleep(ctx, newsDetailDelay); err != nil {
			return report.Finish(), err
		}
	}

	if c.deps.MarketNews != nil {
		c.collectMarketNews(ctx, report)
	}

	logger.Info().
		Int("saved", report.Count(models.ItemSaved)).
		Int("skipped", report.Count(models.ItemSkipped)).
		Int("failed", report.Count(models.ItemFailed)).
		Msg("News collection finished")

	return report.Finish(), nil
}

func (c *NewsCollector) collectMarketNews(ctx context.Context, report *models.CollectionReport) {
	source := c.deps.MarketNews
	items, err := source.MarketNews(ctx)
	if err != nil {
		c.deps.Logger.Warn().Err(err).Str("source", source.Name()).Msg("Secondary news feed unavailable")
		report.Failed(source.Name(), err)
		return
	}

	for _, item := range items {
		if item.ID == "" {
			continue
		}
		id := source.Name() + "-" + item.ID
		if ok, reason := NewsFilter.Admit(item.Headline, ""); !ok {
			report.Skipped(id, reason)
			continue
		}
		if c.deps.Writer.Exists(c.category, RecordFile(id)) {
			report.Skipped(id, models.ReasonDuplicate)
			continue
		}

		published := item.Published
		if published.IsZero() {
			published = c.deps.now()
		}
		record := &models.SourceRecord{
			Category:  c.category,
			ID:        id,
			Title:     item.Headline,
			Content:   item.Summary,
			Source:    orDefault(item.Publisher, source.Name()),
			CreatedAt: published,
			News: &models.NewsDetail{
				Tags: item.Related,
				URL:  item.URL,
			},
		}
		if _, err := c.deps.Writer.WriteRecord(record); err != nil {
			report.Failed(id, err)
			continue
		}
		report.Saved(id)
	}
}

func tagNames(tags []PortalTag) []string {
	var names []string
	for _, tag := range tags {
		if tag.Name != "" {
			names = append(names, tag.Name)
		}
	}
	return names
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
