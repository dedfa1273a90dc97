package collectors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/ledger"
)

const (
	// SearchHistoryFile is the URL ledger of institutional outlook PDFs
	SearchHistoryFile = "search_history.json"

	// DefaultCustomSearchURL is the Google Custom Search JSON endpoint
	DefaultCustomSearchURL = "https://www.googleapis.com/customsearch/v1"

	searchResultsPerQuery = 2
	searchDownloadDelay   = 2 * time.Second
)

var errNoSearchKey = errors.New("google custom search key or cx is not configured")

type customSearchResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

// SearchReportCollector finds institutional outlook PDFs through a custom
// search engine and stores each URL's text at most once
type SearchReportCollector struct {
	base
	searchURL string
}

func NewSearchReportCollector(deps *Deps) *SearchReportCollector {
	return &SearchReportCollector{
		base:      base{name: "search_report", category: models.CategoryReports, deps: deps},
		searchURL: DefaultCustomSearchURL,
	}
}

// ExpandQuery substitutes the current year into a query template
func ExpandQuery(template string, now time.Time) string {
	return strings.ReplaceAll(template, "{year}", strconv.Itoa(now.Year()))
}

func (c *SearchReportCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	cfg := c.deps.Config.Collectors.GoogleSearch
	if cfg.APIKey == "" || cfg.CX == "" {
		return report.Finish(), errNoSearchKey
	}

	history, err := ledger.Open(filepath.Join(c.deps.Writer.Root(), SearchHistoryFile), ledger.WithLogger(c.deps.Logger))
	if err != nil {
		return report.Finish(), err
	}

	now := c.deps.now()
	failedQueries := 0
	for _, template := range cfg.Queries {
		query := ExpandQuery(template, now)
		params := url.Values{}
		params.Set("key", cfg.APIKey)
		params.Set("cx", cfg.CX)
		params.Set("q", query)
		params.Set("fileType", "pdf")
		params.Set("sort", "date")
		params.Set("num", strconv.Itoa(searchResultsPerQuery))

		var resp customSearchResponse
		if err := c.deps.Fetcher.GetJSON(ctx, "google_search", c.searchURL+"?"+params.Encode(), nil, &resp); err != nil {
			c.deps.Logger.Warn().Err(err).Str("query", query).Msg("Search query failed")
			report.Failed(query, err)
			failedQueries++
			continue
		}

		for _, item := range resp.Items {
			if item.Link == "" {
				continue
			}
			if history.HasSeen(item.Link) {
				report.Skipped(item.Link, models.ReasonDuplicate)
				continue
			}

			if err := c.store(ctx, item.Title, item.Link, now); err != nil {
				report.Failed(item.Link, err)
			} else if err := history.MarkSeen(item.Link); err != nil {
				report.Failed(item.Link, &PersistenceError{Path: history.Path(), Err: err})
			} else {
				report.Saved(item.Link)
			}

			if err := c.deps.sleep(ctx, searchDownloadDelay); err != nil {
				return report.Finish(), err
			}
		}
	}

	if len(cfg.Queries) > 0 && failedQueries == len(cfg.Queries) {
		return report.Finish(), errors.New("every search query failed")
	}
	return report.Finish(), nil
}

func (c *SearchReportCollector) store(ctx context.Context, title, link string, now time.Time) error {
	data, err := c.deps.Fetcher.Get(ctx, "google_search", link, nil)
	if err != nil {
		return err
	}

	text, err := c.deps.PDF.ExtractText(ctx, data)
	if err != nil {
		return &ParseError{Source: "google_search", Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return &ParseError{Source: "google_search", Err: fmt.Errorf("no text extracted from %s", link)}
	}

	body := fmt.Sprintf("Title: %s\nURL: %s\nDATE: %s\n%s\n\n%s\n",
		title, link, now.Format("2006-01-02"), strings.Repeat("-", 30), text)
	_, err = c.deps.Writer.WriteText(c.category, SafeFileName(title)+".txt", body)
	return err
}
