package collectors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

var errNoSearcher = errors.New("web searcher is not available")

// SearchTopic is one heading in a search-digest report
type SearchTopic struct {
	Heading string
	Query   string
}

// searchDigest runs "<query> <year> news" for every topic and renders one
// markdown section per topic that returned results
func searchDigest(ctx context.Context, deps *Deps, report *models.CollectionReport, topics []SearchTopic, perTopic int, render func(models.SearchResult) string) []string {
	year := deps.now().Year()
	var sections []string
	for _, topic := range topics {
		query := fmt.Sprintf("%s %d news", topic.Query, year)
		results, err := deps.Searcher.Search(ctx, query, perTopic)
		if err != nil {
			deps.Logger.Warn().Err(err).Str("topic", topic.Heading).Msg("Search failed")
			report.Failed(topic.Heading, err)
			continue
		}
		if len(results) == 0 {
			report.Skipped(topic.Heading, "no results")
			continue
		}

		lines := []string{"\n### " + topic.Heading}
		for _, r := range results {
			lines = append(lines, render(r))
		}
		sections = append(sections, strings.Join(lines, "\n"))
		report.Saved(topic.Heading)
	}
	return sections
}

func linkWithSnippet(r models.SearchResult) string {
	return fmt.Sprintf("- [%s](%s)\n  : %s", r.Title, r.URL, r.Snippet)
}

func titleWithSnippet(r models.SearchResult) string {
	return fmt.Sprintf("- %s: %s", r.Title, r.Snippet)
}

func digestHeader(title string, now time.Time) string {
	return fmt.Sprintf("[%s - %s]\n%s\n", title, now.Format("2006-01-02"), strings.Repeat("=", 60))
}

// IPORegions are searched for non-US IPO news
var IPORegions = []SearchTopic{
	{Heading: "Region: Europe", Query: "Europe major IPO upcoming"},
	{Heading: "Region: India", Query: "India IPO market hot list"},
	{Heading: "Region: Japan", Query: "Japan Tokyo Stock Exchange IPO upcoming"},
	{Heading: "Region: Global", Query: "Global biggest IPOs to watch"},
}

// GlobalIPOCollector digests regional IPO news into global_ipo_news.txt
type GlobalIPOCollector struct {
	base
}

func NewGlobalIPOCollector(deps *Deps) *GlobalIPOCollector {
	return &GlobalIPOCollector{base{name: "global_ipo", category: models.CategoryIPO, deps: deps}}
}

func (c *GlobalIPOCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	if c.deps.Searcher == nil {
		return report.Finish(), errNoSearcher
	}

	sections := searchDigest(ctx, c.deps, report, IPORegions, 3, linkWithSnippet)
	if len(sections) == 0 {
		return report.Finish(), nil
	}

	text := digestHeader("Global IPO Trends (Non-US)", c.deps.now()) + strings.Join(sections, "\n") + "\n"
	if _, err := c.deps.Writer.WriteText(c.category, "global_ipo_news.txt", text); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}

// Gurus are tracked investors; the guru heading is what the fusion stage
// quotes when it weighs confluence
var Gurus = []SearchTopic{
	{Heading: "Peter Thiel", Query: "Peter Thiel investment portfolio opinion"},
	{Heading: "Cathie Wood", Query: "Cathie Wood Ark Invest latest buying stock"},
	{Heading: "George Soros", Query: "George Soros market outlook portfolio"},
	{Heading: "Larry Fink", Query: "Larry Fink BlackRock annual letter investment strategy"},
	{Heading: "Ken Griffin", Query: "Ken Griffin Citadel market forecast"},
}

// InstitutionalSources are summarized without links
var InstitutionalSources = []SearchTopic{
	{Heading: "Bloomberg_Brief", Query: "Bloomberg market wrap today summary"},
	{Heading: "Goldman_Sachs", Query: "Goldman Sachs global investment research summary"},
	{Heading: "Morgan_Stanley", Query: "Morgan Stanley market outlook report summary"},
}

// GuruCollector digests guru and institutional commentary into guru_insights.txt
type GuruCollector struct {
	base
}

func NewGuruCollector(deps *Deps) *GuruCollector {
	return &GuruCollector{base{name: "guru", category: models.CategoryGuru, deps: deps}}
}

func (c *GuruCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	if c.deps.Searcher == nil {
		return report.Finish(), errNoSearcher
	}

	sections := searchDigest(ctx, c.deps, report, Gurus, 2, linkWithSnippet)
	sections = append(sections, searchDigest(ctx, c.deps, report, InstitutionalSources, 2, titleWithSnippet)...)
	if len(sections) == 0 {
		return report.Finish(), nil
	}

	text := digestHeader("Gurus & Institutional Insights", c.deps.now()) + strings.Join(sections, "\n") + "\n"
	if _, err := c.deps.Writer.WriteText(c.category, "guru_insights.txt", text); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}
