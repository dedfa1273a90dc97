package collectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/augur/internal/models"
)

const (
	// DefaultEconomicCalendarURL is rendered in the headless browser
	DefaultEconomicCalendarURL = "https://www.investing.com/economic-calendar/"

	calendarRenderWait = 3 * time.Second
)

// macroNames labels the default macro symbols
var macroNames = map[string]string{
	"TNX.INDX":     "US 10Y Treasury yield",
	"DXY.INDX":     "Dollar index",
	"USDKRW.FOREX": "USD/KRW",
	"CL.COMM":      "WTI crude",
	"HG.COMM":      "Copper futures",
	"SOX.INDX":     "Philadelphia semiconductor",
	"VIX.INDX":     "Fear index (VIX)",
}

// CalendarEvent is one high-importance economic release
type CalendarEvent struct {
	Time     string
	Currency string
	Event    string
	Forecast string
	Actual   string
}

func (e CalendarEvent) String() string {
	return fmt.Sprintf("[%s] (%s) %s | forecast: %s / actual: %s", e.Time, e.Currency, e.Event, e.Forecast, e.Actual)
}

// ParseEconomicCalendar returns the three-star USD and KRW events
func ParseEconomicCalendar(doc *goquery.Document) ([]CalendarEvent, bool) {
	table := doc.Find("table#economicCalendarData")
	if table.Length() == 0 {
		return nil, false
	}

	text := func(row *goquery.Selection, selector string) string {
		cell := row.Find(selector).First()
		if cell.Length() == 0 {
			return "-"
		}
		return orDefault(strings.TrimSpace(cell.Text()), "-")
	}

	var events []CalendarEvent
	table.Find("tr.js-event-item").Each(func(_ int, row *goquery.Selection) {
		if row.Find(".grayFullBullishIcon").Length() < 3 {
			return
		}
		currency := strings.TrimSpace(row.Find("td.flagCur").Text())
		if currency != "USD" && currency != "KRW" {
			return
		}
		events = append(events, CalendarEvent{
			Time:     strings.TrimSpace(row.Find("td.time").Text()),
			Currency: currency,
			Event:    text(row, "td.event"),
			Forecast: text(row, "td.fore"),
			Actual:   text(row, "td.bold"),
		})
	})
	return events, true
}

// MacroCollector writes Daily_Macro_<date>.txt with index levels and the
// day's important economic releases
type MacroCollector struct {
	base
	calendarURL string
}

func NewMacroCollector(deps *Deps) *MacroCollector {
	return &MacroCollector{
		base:        base{name: "macro", category: models.CategoryReports, deps: deps},
		calendarURL: DefaultEconomicCalendarURL,
	}
}

func (c *MacroCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	now := c.deps.now()
	date := now.Format("2006-01-02")

	indices := c.indices(ctx, report, now)
	calendar := c.calendar(ctx, report)

	text := fmt.Sprintf("=== Daily Macro Briefing (%s) ===\n\n[1. Key market indicators]\n%s\n\n[2. Today's key economic events (3 stars)]\n%s\n",
		date, indices, calendar)
	if _, err := c.deps.Writer.WriteText(c.category, "Daily_Macro_"+date+".txt", text); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}

func (c *MacroCollector) indices(ctx context.Context, report *models.CollectionReport, now time.Time) string {
	if c.deps.Quotes == nil {
		return "Market data unavailable"
	}

	var lines []string
	for _, symbol := range c.deps.Config.Collectors.EODHD.Symbols {
		price, change, err := c.deps.Quotes.GetDailyChange(ctx, symbol, now)
		if err != nil {
			c.deps.Logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable")
			report.Failed(symbol, err)
			continue
		}
		name := macroNames[symbol]
		if name == "" {
			name = symbol
		}
		lines = append(lines, wonPrinter.Sprintf("[%s] %.2f (%+.2f%%)", name, price, change))
		report.Saved(symbol)
	}
	if len(lines) == 0 {
		return "Market data unavailable"
	}
	return strings.Join(lines, "\n")
}

func (c *MacroCollector) calendar(ctx context.Context, report *models.CollectionReport) string {
	if c.deps.Renderer == nil {
		report.Failed("calendar", errNoRenderer)
		return "Calendar unavailable"
	}

	page, err := c.deps.Renderer.Render(ctx, c.calendarURL, calendarRenderWait)
	if err != nil {
		report.Failed("calendar", &FetchError{Source: "calendar", URL: c.calendarURL, Err: err})
		return "Calendar unavailable"
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		report.Failed("calendar", &ParseError{Source: "calendar", Err: err})
		return "Calendar unavailable"
	}

	events, found := ParseEconomicCalendar(doc)
	if !found {
		report.Failed("calendar", &ParseError{Source: "calendar", Err: fmt.Errorf("calendar table not found")})
		return "Calendar unavailable"
	}
	report.Saved("calendar")
	if len(events) == 0 {
		return "No key events today"
	}

	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}
