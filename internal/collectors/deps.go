package collectors

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/imap"
)

// MailSource reads the newest messages from a set of senders
type MailSource interface {
	FetchLatestFrom(ctx context.Context, senders []string, perSender int) ([]imap.Email, error)
}

// QuoteSource returns the latest price and daily percentage change of a symbol
type QuoteSource interface {
	GetDailyChange(ctx context.Context, symbol string, now time.Time) (price, changePct float64, err error)
}

// MarketNewsSource is a secondary news feed
type MarketNewsSource interface {
	Name() string
	MarketNews(ctx context.Context) ([]MarketNewsItem, error)
}

// MarketNewsItem is one headline from a MarketNewsSource
type MarketNewsItem struct {
	ID        string
	Headline  string
	Summary   string
	URL       string
	Publisher string
	Related   []string
	Published time.Time
}

// Deps carries everything the concrete collectors need. Optional sources may
// be nil; the collectors depending on them report a configuration error.
type Deps struct {
	Config     *common.Config
	Writer     *Writer
	Fetcher    *Fetcher
	Saveticker *Saveticker
	PDF        interfaces.PDFExtractor
	Renderer   interfaces.PageRenderer
	Searcher   interfaces.WebSearcher
	Mail       MailSource
	Quotes     QuoteSource
	MarketNews MarketNewsSource
	Logger     arbor.ILogger

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) sleep(ctx context.Context, delay time.Duration) error {
	if d.Sleep != nil {
		return d.Sleep(ctx, delay)
	}
	return common.Sleep(ctx, delay)
}

// base holds the identity shared by every collector
type base struct {
	name     string
	category models.Category
	deps     *Deps
}

func (b base) Name() string              { return b.name }
func (b base) Category() models.Category { return b.category }

func (b base) newReport() *models.CollectionReport {
	return models.NewCollectionReport(b.name, b.category)
}

// parseTimestamp accepts the timestamp layouts used by the portal APIs
func parseTimestamp(s string, fallback time.Time) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
