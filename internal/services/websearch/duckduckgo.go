// Package websearch runs keyword searches against the DuckDuckGo HTML endpoint.
package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
)

// DefaultBaseURL is the no-JavaScript DuckDuckGo endpoint
const DefaultBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo implements WebSearcher
type DuckDuckGo struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     arbor.ILogger
}

// Option configures the searcher
type Option func(*DuckDuckGo)

// WithBaseURL overrides the search endpoint
func WithBaseURL(baseURL string) Option {
	return func(d *DuckDuckGo) { d.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(d *DuckDuckGo) { d.httpClient = client }
}

// NewDuckDuckGo creates a searcher limited to one query per second
func NewDuckDuckGo(userAgent string, logger arbor.ILogger, opts ...Option) interfaces.WebSearcher {
	d := &DuckDuckGo{
		baseURL:    DefaultBaseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search returns up to max organic results for query
func (d *DuckDuckGo) Search(ctx context.Context, query string, max int) ([]models.SearchResult, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	results := ParseResults(doc, max)
	d.logger.Debug().Str("query", query).Int("results", len(results)).Msg("Web search completed")
	return results, nil
}

// ParseResults extracts organic results from a DuckDuckGo HTML page,
// skipping ads
func ParseResults(doc *goquery.Document, max int) []models.SearchResult {
	var results []models.SearchResult
	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}

		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}

		results = append(results, models.SearchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.Join(strings.Fields(s.Find(".result__snippet").Text()), " "),
		})
		return max <= 0 || len(results) < max
	})
	return results
}

// resolveRedirect unwraps //duckduckgo.com/l/?uddg=<target> links
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
