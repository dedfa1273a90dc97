package collectors

import (
	"context"
	"strconv"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

// FinnhubNews is a MarketNewsSource over Finnhub market news
type FinnhubNews struct {
	client   *finnhub.DefaultApiService
	category string
	limit    int
}

// NewFinnhubNews creates a Finnhub news source for a news category
// ("general", "forex", "crypto", "merger")
func NewFinnhubNews(apiKey, category string, limit int) *FinnhubNews {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	if category == "" {
		category = "general"
	}
	return &FinnhubNews{
		client:   finnhub.NewAPIClient(cfg).DefaultApi,
		category: category,
		limit:    limit,
	}
}

func (f *FinnhubNews) Name() string {
	return "finnhub"
}

func (f *FinnhubNews) MarketNews(ctx context.Context) ([]MarketNewsItem, error) {
	res, _, err := f.client.MarketNews(ctx).Category(f.category).Execute()
	if err != nil {
		return nil, &FetchError{Source: f.Name(), URL: "market-news", Err: err}
	}

	var items []MarketNewsItem
	for _, news := range res {
		if f.limit > 0 && len(items) >= f.limit {
			break
		}

		var item MarketNewsItem
		if news.Id != nil {
			item.ID = strconv.FormatInt(*news.Id, 10)
		}
		if news.Headline != nil {
			item.Headline = *news.Headline
		}
		if news.Summary != nil {
			item.Summary = *news.Summary
		}
		if news.Url != nil {
			item.URL = *news.Url
		}
		if news.Datetime != nil {
			item.Published = time.Unix(*news.Datetime, 0)
		}
		if news.Source != nil {
			item.Publisher = *news.Source
		}
		if news.Related != nil && *news.Related != "" {
			item.Related = strings.Split(*news.Related, ",")
		}
		items = append(items, item)
	}

	return items, nil
}
