package collectors

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

const communityDetailDelay = 500 * time.Millisecond

// CommunityCollector captures user-submitted posts from the portal's
// user_news board
type CommunityCollector struct {
	base
}

func NewCommunityCollector(deps *Deps) *CommunityCollector {
	return &CommunityCollector{base{name: "community", category: models.CategoryCommunity, deps: deps}}
}

func (c *CommunityCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()

	posts, err := c.deps.Saveticker.ListPosts(ctx)
	if err != nil {
		return report.Finish(), fmt.Errorf("failed to list community posts: %w", err)
	}

	for _, post := range posts {
		id := string(post.ID)
		if id == "" {
			continue
		}
		if ok, reason := CommunityFilter.Admit(post.Title, post.Content); !ok {
			report.Skipped(id, reason)
			continue
		}
		if c.deps.Writer.Exists(c.category, RecordFile(id)) {
			report.Skipped(id, models.ReasonDuplicate)
			continue
		}

		detail, err := c.deps.Saveticker.PostDetail(ctx, id)
		if err != nil {
			report.Failed(id, err)
			continue
		}
		if detail == nil {
			detail = &post
		}

		record := &models.SourceRecord{
			Category:  c.category,
			ID:        id,
			Title:     detail.Title,
			Content:   detail.Content,
			Source:    "Saveticker Community",
			CreatedAt: parseTimestamp(detail.CreatedAt, c.deps.now()),
			Community: &models.CommunityDetail{
				Author:    orDefault(detail.AuthorName, "Unknown"),
				ViewCount: detail.ViewCount,
				Likes:     detail.LikeStats.LikeCount,
			},
		}
		if _, err := c.deps.Writer.WriteRecord(record); err != nil {
			report.Failed(id, err)
			continue
		}
		report.Saved(id)

		if err := c.deps.sleep(ctx, communityDetailDelay); err != nil {
			return report.Finish(), err
		}
	}

	c.deps.Logger.Info().
		Int("saved", report.Count(models.ItemSaved)).
		Int("skipped", report.Count(models.ItemSkipped)).
		Msg("Community collection finished")

	return report.Finish(), nil
}
