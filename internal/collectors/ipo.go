package collectors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/augur/internal/models"
)

const (
	// DefaultKRIPOURL is the Korean subscription calendar, served as EUC-KR
	DefaultKRIPOURL = "http://www.38.co.kr/html/fund/index.htm?o=k"

	// DefaultUSIPOURL is the US IPO calendar
	DefaultUSIPOURL = "https://stockanalysis.com/ipos/calendar/"

	maxIPOsPerMarket = 10
)

// ParseKRIPOs reads the subscription schedule table. Only rows whose
// schedule is a date range are listed.
func ParseKRIPOs(doc *goquery.Document) []string {
	var out []string
	doc.Find(`table[summary="공모주 청약일정"] tr`).EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cols := row.Find("td")
		if cols.Length() < 5 {
			return true
		}
		cell := func(i int) string { return strings.TrimSpace(cols.Eq(i).Text()) }
		schedule := cell(1)
		if !strings.Contains(schedule, "~") {
			return true
		}
		out = append(out, fmt.Sprintf("- [KR] %s | subscription: %s | offer price: %s | underwriter: %s",
			cell(0), schedule, cell(2), cell(4)))
		return len(out) < maxIPOsPerMarket
	})
	return out
}

// ParseUSIPOs reads the first calendar table, skipping its header row
func ParseUSIPOs(doc *goquery.Document) []string {
	var out []string
	rows := doc.Find("table").First().Find("tr")
	rows.Slice(1, goquery.ToEnd).EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i >= maxIPOsPerMarket {
			return false
		}
		cols := row.Find("td")
		if cols.Length() < 3 {
			return true
		}
		cell := func(i int) string { return strings.TrimSpace(cols.Eq(i).Text()) }
		price := "N/A"
		if cols.Length() > 3 {
			price = cell(3)
		}
		out = append(out, fmt.Sprintf("- [US] %s (%s) | date: %s | expected price: %s", cell(2), cell(1), cell(0), price))
		return true
	})
	return out
}

// IPOCollector merges the Korean and US IPO calendars into ipo_calendar.txt
type IPOCollector struct {
	base
	krURL string
	usURL string
}

func NewIPOCollector(deps *Deps) *IPOCollector {
	return &IPOCollector{
		base:  base{name: "ipo", category: models.CategoryIPO, deps: deps},
		krURL: DefaultKRIPOURL,
		usURL: DefaultUSIPOURL,
	}
}

func (c *IPOCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()

	kr, err := c.krCalendar(ctx)
	if err != nil {
		c.deps.Logger.Warn().Err(err).Msg("Korean IPO calendar unavailable")
		report.Failed("kr", err)
	} else {
		report.Saved("kr")
	}

	us, err := c.usCalendar(ctx)
	if err != nil {
		c.deps.Logger.Warn().Err(err).Msg("US IPO calendar unavailable")
		report.Failed("us", err)
	} else {
		report.Saved("us")
	}

	all := append(kr, us...)
	if len(all) == 0 {
		if report.Count(models.ItemSaved) == 0 {
			return report.Finish(), errors.New("no IPO calendar could be read")
		}
		return report.Finish(), nil
	}

	text := fmt.Sprintf("[Global IPO Calendar Update: %s]\n%s\n%s\n",
		c.deps.now().Format("2006-01-02"), strings.Repeat("=", 50), strings.Join(all, "\n"))
	if _, err := c.deps.Writer.WriteText(c.category, "ipo_calendar.txt", text); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}

func (c *IPOCollector) krCalendar(ctx context.Context) ([]string, error) {
	body, err := c.deps.Fetcher.GetEUCKR(ctx, "ipo_kr", c.krURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Source: "ipo_kr", Err: err}
	}
	return ParseKRIPOs(doc), nil
}

func (c *IPOCollector) usCalendar(ctx context.Context) ([]string, error) {
	body, err := c.deps.Fetcher.Get(ctx, "ipo_us", c.usURL, nil)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Source: "ipo_us", Err: err}
	}
	return ParseUSIPOs(doc), nil
}
