package collectors

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/augur/internal/models"
)

// DefaultJobSearchURL is the Saramin job-search endpoint
const DefaultJobSearchURL = "https://oapi.saramin.co.kr/job-search"

// HiringFile is the trends file the hiring collector overwrites
const HiringFile = "hiring.txt"

type jobSearchResponse struct {
	Jobs struct {
		Job []JobPosting `json:"job"`
	} `json:"jobs"`
}

// JobPosting is one Saramin posting, reduced to the fields the trend report uses
type JobPosting struct {
	ID      string `json:"id"`
	Company struct {
		Detail struct {
			Name string `json:"name"`
		} `json:"detail"`
	} `json:"company"`
	Position struct {
		Title   string `json:"title"`
		JobCode struct {
			Name string `json:"name"`
		} `json:"job-code"`
	} `json:"position"`
}

// HiringLine renders a posting as "- [company] title | Tech: stack".
// Postings without a company or title are not reported.
func HiringLine(job JobPosting) (string, bool) {
	company := strings.TrimSpace(job.Company.Detail.Name)
	title := strings.TrimSpace(job.Position.Title)
	if company == "" || title == "" {
		return "", false
	}
	tech := strings.TrimSpace(job.Position.JobCode.Name)
	if tech == "" {
		tech = "N/A"
	}
	return fmt.Sprintf("- [%s] %s | Tech: %s", company, title, tech), true
}

// HiringCollector records the newest postings for the configured tech keywords
type HiringCollector struct {
	base
	endpoint string
}

func NewHiringCollector(deps *Deps) *HiringCollector {
	return &HiringCollector{
		base:     base{name: "hiring", category: models.CategoryTrends, deps: deps},
		endpoint: DefaultJobSearchURL,
	}
}

func (c *HiringCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	cfg := c.deps.Config.Collectors.Saramin
	if cfg.APIKey == "" {
		c.deps.Logger.Info().Msg("Saramin API key not configured, skipping hiring trends")
		return report.Finish(), nil
	}

	params := url.Values{}
	params.Set("access-key", cfg.APIKey)
	params.Set("keywords", cfg.Keywords)
	params.Set("count", strconv.Itoa(cfg.Count))
	params.Set("sort", "rc")
	params.Set("fields", "posting-date,expiration-date,keyword-code,count")

	header := http.Header{}
	header.Set("Accept", "application/json")

	var resp jobSearchResponse
	if err := c.deps.Fetcher.GetJSON(ctx, c.name, c.endpoint+"?"+params.Encode(), header, &resp); err != nil {
		return report.Finish(), err
	}

	lines := []string{fmt.Sprintf("[Tech Hiring Trend (Keywords: %s)]", cfg.Keywords)}
	for i, job := range resp.Jobs.Job {
		id := job.ID
		if id == "" {
			id = strconv.Itoa(i)
		}
		line, ok := HiringLine(job)
		if !ok {
			report.Skipped(id, models.ReasonFiltered)
			continue
		}
		lines = append(lines, line)
		report.Saved(id)
	}

	if len(lines) == 1 {
		c.deps.Logger.Warn().Str("keywords", cfg.Keywords).Msg("No job postings found")
		return report.Finish(), nil
	}

	if _, err := c.deps.Writer.WriteText(c.category, HiringFile, strings.Join(lines, "\n")+"\n"); err != nil {
		return report.Finish(), err
	}
	c.deps.Logger.Info().Int("postings", len(lines)-1).Msg("Hiring trends saved")
	return report.Finish(), nil
}
