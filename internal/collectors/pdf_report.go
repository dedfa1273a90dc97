package collectors

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ledger"
)

// DownloadHistoryFile is the identifier ledger of portal reports
const DownloadHistoryFile = "download_history.json"

var errNoPortalToken = errors.New("saveticker auth token is not configured")

// PDFReportCollector downloads the newest portal research report, at most
// once per report id
type PDFReportCollector struct {
	base
}

func NewPDFReportCollector(deps *Deps) *PDFReportCollector {
	return &PDFReportCollector{base{name: "pdf_report", category: models.CategoryReports, deps: deps}}
}

func (c *PDFReportCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	if c.deps.Config.Collectors.Saveticker.AuthToken == "" {
		return report.Finish(), errNoPortalToken
	}

	history, err := ledger.Open(filepath.Join(c.deps.Writer.Root(), DownloadHistoryFile), ledger.WithLogger(c.deps.Logger))
	if err != nil {
		return report.Finish(), err
	}

	latest, err := c.deps.Saveticker.LatestReport(ctx)
	if err != nil {
		return report.Finish(), fmt.Errorf("failed to list reports: %w", err)
	}
	if latest == nil || latest.ID == "" {
		c.deps.Logger.Info().Msg("No portal report available")
		return report.Finish(), nil
	}

	id := string(latest.ID)
	if history.HasSeen(id) {
		report.Skipped(id, models.ReasonDuplicate)
		return report.Finish(), nil
	}

	data, source, err := c.deps.Saveticker.ReportPDF(ctx, id)
	if err != nil {
		report.Failed(id, err)
		return report.Finish(), nil
	}

	text, err := c.deps.PDF.ExtractText(ctx, data)
	if err != nil {
		report.Failed(id, &ParseError{Source: "saveticker", Err: err})
		return report.Finish(), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nID: %s\nSource: %s\n%s\n\n", latest.Title, id, source, strings.Repeat("-", 30))
	b.WriteString(text)
	b.WriteString("\n")

	if _, err := c.deps.Writer.WriteText(c.category, SafeFileName(latest.Title)+".txt", b.String()); err != nil {
		report.Failed(id, err)
		return report.Finish(), nil
	}
	if err := history.MarkSeen(id); err != nil {
		report.Failed(id, &PersistenceError{Path: history.Path(), Err: err})
		return report.Finish(), nil
	}

	c.deps.Logger.Info().Str("id", id).Str("title", latest.Title).Msg("Portal report saved")
	report.Saved(id)
	return report.Finish(), nil
}
