package collectors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/loader"
)

const emailSnippetRunes = 500

// EmailCollector summarizes the newest investment newsletters into
// email_briefing.txt
type EmailCollector struct {
	base
}

func NewEmailCollector(deps *Deps) *EmailCollector {
	return &EmailCollector{base{name: "email", category: models.CategoryReports, deps: deps}}
}

func (c *EmailCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	if c.deps.Mail == nil {
		return report.Finish(), errors.New("mailbox is not configured")
	}
	cfg := c.deps.Config.Collectors.IMAP

	emails, err := c.deps.Mail.FetchLatestFrom(ctx, cfg.Senders, cfg.PerSender)
	if err != nil {
		return report.Finish(), fmt.Errorf("failed to read mailbox: %w", err)
	}
	if len(emails) == 0 {
		c.deps.Logger.Info().Msg("No newsletters found")
		return report.Finish(), nil
	}

	lines := []string{fmt.Sprintf("[Email Intelligence Briefing - %s]", c.deps.now().Format("2006-01-02"))}
	for _, email := range emails {
		snippet := loader.Truncate(strings.Join(strings.Fields(email.Body), " "), emailSnippetRunes)
		lines = append(lines, fmt.Sprintf("\n### From: %s\n**Subject:** %s\n**Content Snippet:** %s...", email.From, email.Subject, snippet))
		report.Saved(fmt.Sprintf("%d", email.ID))
	}

	if _, err := c.deps.Writer.WriteText(c.category, "email_briefing.txt", strings.Join(lines, "\n")+"\n"); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}
