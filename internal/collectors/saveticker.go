package collectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/augur/internal/common"
)

// Saveticker is the news-portal API shared by the news, community and
// pdf_report collectors
type Saveticker struct {
	fetcher *Fetcher
	config  common.SavetickerConfig
}

// NewSaveticker creates a portal client
func NewSaveticker(fetcher *Fetcher, config common.SavetickerConfig) *Saveticker {
	if config.PageSize <= 0 {
		config.PageSize = 20
	}
	return &Saveticker{fetcher: fetcher, config: config}
}

// flexID accepts numeric or string identifiers
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

// PortalTag is a news tag
type PortalTag struct {
	Name string `json:"name"`
}

type contentBlock struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// PortalContent is either a string or a list of typed blocks
type PortalContent string

func (c *PortalContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = PortalContent(s)
		return nil
	}
	var blocks []contentBlock
	if err := json.Unmarshal(data, &blocks); err != nil {
		return err
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" {
			texts = append(texts, b.Content)
		}
	}
	*c = PortalContent(strings.Join(texts, "\n"))
	return nil
}

// PortalNews is a news item from the list or detail endpoint
type PortalNews struct {
	ID         flexID        `json:"id"`
	Title      string        `json:"title"`
	CreatedAt  string        `json:"created_at"`
	Content    PortalContent `json:"content"`
	Source     string        `json:"source"`
	Tags       []PortalTag   `json:"tags"`
	AuthorName string        `json:"author_name"`
}

// PortalPost is a community post
type PortalPost struct {
	ID         flexID `json:"id"`
	Title      string `json:"title"`
	CreatedAt  string `json:"created_at"`
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
	ViewCount  int    `json:"view_count"`
	LikeStats  struct {
		LikeCount int `json:"like_count"`
	} `json:"like_stats"`
}

// PortalReport is a research report entry
type PortalReport struct {
	ID     flexID `json:"id"`
	Title  string `json:"title"`
	PDFURL string `json:"pdf_url"`
}

func (s *Saveticker) header() http.Header {
	h := http.Header{}
	if s.config.AuthToken != "" {
		h.Set("Authorization", s.config.AuthToken)
	}
	return h
}

func (s *Saveticker) listURL(kind string, extra url.Values) string {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("page_size", strconv.Itoa(s.config.PageSize))
	params.Set("sort", "created_at_desc")
	for k, v := range extra {
		params[k] = v
	}
	return fmt.Sprintf("%s/api/%s/list?%s", s.config.BaseURL, kind, params.Encode())
}

func (s *Saveticker) detailURL(kind, id string) string {
	return fmt.Sprintf("%s/api/%s/detail/%s", s.config.BaseURL, kind, url.PathEscape(id))
}

// ListNews returns the newest news items
func (s *Saveticker) ListNews(ctx context.Context) ([]PortalNews, error) {
	var resp struct {
		NewsList []PortalNews `json:"news_list"`
	}
	err := s.fetcher.GetJSON(ctx, "saveticker", s.listURL("news", nil), s.header(), &resp)
	return resp.NewsList, err
}

// NewsDetail returns one news item with its full content
func (s *Saveticker) NewsDetail(ctx context.Context, id string) (*PortalNews, error) {
	var resp struct {
		News *PortalNews `json:"news"`
	}
	if err := s.fetcher.GetJSON(ctx, "saveticker", s.detailURL("news", id), s.header(), &resp); err != nil {
		return nil, err
	}
	if resp.News == nil {
		return nil, &ParseError{Source: "saveticker", Err: fmt.Errorf("news %s missing from detail response", id)}
	}
	return resp.News, nil
}

// ListPosts returns the newest community posts in the user_news board
func (s *Saveticker) ListPosts(ctx context.Context) ([]PortalPost, error) {
	var resp struct {
		Posts []PortalPost `json:"posts"`
	}
	extra := url.Values{"category": []string{"user_news"}}
	err := s.fetcher.GetJSON(ctx, "saveticker", s.listURL("community", extra), s.header(), &resp)
	return resp.Posts, err
}

// PostDetail returns one community post; nil when the detail has no post
func (s *Saveticker) PostDetail(ctx context.Context, id string) (*PortalPost, error) {
	var resp struct {
		Post *PortalPost `json:"post"`
	}
	if err := s.fetcher.GetJSON(ctx, "saveticker", s.detailURL("community", id), s.header(), &resp); err != nil {
		return nil, err
	}
	return resp.Post, nil
}

// LatestReport returns the newest report entry, or nil when the list is empty
func (s *Saveticker) LatestReport(ctx context.Context) (*PortalReport, error) {
	var resp struct {
		Reports    []PortalReport `json:"reports"`
		ReportList []PortalReport `json:"report_list"`
	}
	params := url.Values{}
	params.Set("page", "1")
	params.Set("page_size", "1")
	params.Set("sort", "created_at_desc")
	listURL := fmt.Sprintf("%s/api/reports/list?%s", s.config.BaseURL, params.Encode())

	if err := s.fetcher.GetJSON(ctx, "saveticker", listURL, s.header(), &resp); err != nil {
		return nil, err
	}
	reports := resp.Reports
	if len(reports) == 0 {
		reports = resp.ReportList
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

// ReportPDF resolves a report's PDF link and downloads it
func (s *Saveticker) ReportPDF(ctx context.Context, id string) (data []byte, source string, err error) {
	source = s.detailURL("reports", id)
	var resp struct {
		Report PortalReport `json:"report"`
	}
	if err := s.fetcher.GetJSON(ctx, "saveticker", source, s.header(), &resp); err != nil {
		return nil, source, err
	}
	if resp.Report.PDFURL == "" {
		return nil, source, &ParseError{Source: "saveticker", Err: fmt.Errorf("report %s has no pdf_url", id)}
	}

	pdfURL := resp.Report.PDFURL
	if !strings.HasPrefix(pdfURL, "http") {
		pdfURL = s.config.BaseURL + pdfURL
	}
	data, err = s.fetcher.Get(ctx, "saveticker", pdfURL, s.header())
	return data, source, err
}
