package collectors

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

// DefaultStoreListURL lists registered stores in a district
const DefaultStoreListURL = "http://apis.data.go.kr/B553077/api/open/sdsc2/storeListInDong"

type storeListResponse struct {
	Body struct {
		Items []struct {
			MiddleCategory string `json:"indsMclsNm"`
		} `json:"items"`
	} `json:"body"`
}

// CategoryShare is one business category's share of a district's stores
type CategoryShare struct {
	Name  string
	Count int
	Pct   float64
}

// TopCategories counts names and returns the n most frequent with their
// share of total. Ties keep first-seen order.
func TopCategories(names []string, total, n int) []CategoryShare {
	counts := map[string]int{}
	var order []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := counts[name]; !ok {
			order = append(order, name)
		}
		counts[name]++
	}

	shares := make([]CategoryShare, 0, len(order))
	for _, name := range order {
		share := CategoryShare{Name: name, Count: counts[name]}
		if total > 0 {
			share.Pct = float64(share.Count) / float64(total) * 100
		}
		shares = append(shares, share)
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})
	if len(shares) > n {
		shares = shares[:n]
	}
	return shares
}

// CommercialAreaCollector reports the dominant store categories per region
type CommercialAreaCollector struct {
	base
	endpoint string
}

func NewCommercialAreaCollector(deps *Deps) *CommercialAreaCollector {
	return &CommercialAreaCollector{
		base:     base{name: "commercial_area", category: models.CategoryTrends, deps: deps},
		endpoint: DefaultStoreListURL,
	}
}

func (c *CommercialAreaCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	key := c.deps.Config.Collectors.DataGoKr.ServiceKey
	if key == "" {
		return report.Finish(), errNoServiceKey
	}

	var sections []string
	for _, region := range c.deps.Config.Collectors.Regions {
		params := url.Values{}
		params.Set("serviceKey", key)
		params.Set("pageNo", "1")
		params.Set("numOfRows", "200")
		params.Set("divId", "signguCd")
		params.Set("key", region.Code)
		params.Set("type", "json")

		var resp storeListResponse
		if err := c.deps.Fetcher.GetJSON(ctx, c.name, c.endpoint+"?"+params.Encode(), nil, &resp); err != nil {
			report.Failed(region.Code, err)
		} else if len(resp.Body.Items) == 0 {
			report.Skipped(region.Code, "no stores")
		} else {
			names := make([]string, 0, len(resp.Body.Items))
			for _, item := range resp.Body.Items {
				names = append(names, item.MiddleCategory)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "### %s\n", region.Name)
			for _, share := range TopCategories(names, len(names), 5) {
				fmt.Fprintf(&b, "- %s: %d stores (%.1f%%)\n", share.Name, share.Count, share.Pct)
			}
			sections = append(sections, b.String())
			report.Saved(region.Code)
		}

		if err := c.deps.sleep(ctx, time.Second); err != nil {
			return report.Finish(), err
		}
	}

	if len(sections) == 0 {
		return report.Finish(), nil
	}
	text := fmt.Sprintf("[Commercial district trends]\n%s\n", strings.Repeat("=", 30)) + strings.Join(sections, "\n")
	if _, err := c.deps.Writer.WriteText(c.category, "commercial.txt", text); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}
