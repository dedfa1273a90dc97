package collectors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/augur/internal/models"
)

const (
	// DefaultRealEstateURL lists commercial real-estate trades per district and month
	DefaultRealEstateURL = "http://apis.data.go.kr/1613000/RTMSDataSvcNrgTrade/getRTMSDataSvcNrgTrade"

	dealsPerRegion = 10
	regionDelay    = 500 * time.Millisecond
)

var errNoServiceKey = errors.New("data.go.kr service key is not configured")

type tradeResponse struct {
	Items []tradeItem `xml:"body>items>item"`
}

type tradeItem struct {
	DealAmount   string `xml:"dealAmount"`
	DealMonth    string `xml:"dealMonth"`
	DealDay      string `xml:"dealDay"`
	BuildingType string `xml:"buildingType"`
	BuildingUse  string `xml:"buildingUse"`
	PlottageArea string `xml:"plottageAr"`
	Floor        string `xml:"floor"`
	ExclusiveAr  string `xml:"excluUseAr"`
}

func dash(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return s
}

// Line renders one trade. Whole-building trades report the plot area,
// unit trades the floor and exclusive area.
func (t tradeItem) Line() string {
	date := dash(t.DealMonth) + "/" + dash(t.DealDay)
	price := dash(t.DealAmount)
	if strings.TrimSpace(t.BuildingType) == "일반" {
		return fmt.Sprintf("%s | whole building | %s | plot %s㎡ | %s (10k KRW)", date, dash(t.BuildingUse), dash(t.PlottageArea), price)
	}
	return fmt.Sprintf("%s | unit | %s (floor %s) | exclusive %s㎡ | %s (10k KRW)", date, dash(t.BuildingUse), dash(t.Floor), dash(t.ExclusiveAr), price)
}

// DealMonth returns the reporting month the collector queries: the month
// before now, as YYYYMM
func DealMonth(now time.Time) string {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return firstOfMonth.AddDate(0, 0, -1).Format("200601")
}

// TopDeals keeps the n most detailed lines, longest first
func TopDeals(lines []string, n int) []string {
	sorted := append([]string(nil), lines...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RealEstateCollector summarizes last month's commercial property trades
// for every configured region
type RealEstateCollector struct {
	base
	endpoint string
}

func NewRealEstateCollector(deps *Deps) *RealEstateCollector {
	return &RealEstateCollector{
		base:     base{name: "real_estate", category: models.CategoryAssets, deps: deps},
		endpoint: DefaultRealEstateURL,
	}
}

func (c *RealEstateCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	key := c.deps.Config.Collectors.DataGoKr.ServiceKey
	if key == "" {
		return report.Finish(), errNoServiceKey
	}

	dealYM := DealMonth(c.deps.now())
	sections := []string{fmt.Sprintf("[Commercial real-estate trades (%s)]\n%s", dealYM, strings.Repeat("=", 40))}

	for _, region := range c.deps.Config.Collectors.Regions {
		params := url.Values{}
		params.Set("serviceKey", key)
		params.Set("LAWD_CD", region.Code)
		params.Set("DEAL_YMD", dealYM)
		params.Set("numOfRows", "50")
		params.Set("pageNo", "1")

		var resp tradeResponse
		if err := c.deps.Fetcher.GetXML(ctx, c.name, c.endpoint+"?"+params.Encode(), nil, &resp); err != nil {
			c.deps.Logger.Warn().Err(err).Str("region", region.Name).Msg("Trade lookup failed")
			report.Failed(region.Code, err)
		} else if len(resp.Items) == 0 {
			report.Skipped(region.Code, "no trades")
		} else {
			lines := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				lines = append(lines, item.Line())
			}
			sections = append(sections, "\n### "+region.Name)
			sections = append(sections, TopDeals(lines, dealsPerRegion)...)
			report.Saved(region.Code)
		}

		if err := c.deps.sleep(ctx, regionDelay); err != nil {
			return report.Finish(), err
		}
	}

	if report.Count(models.ItemSaved) == 0 {
		c.deps.Logger.Info().Str("month", dealYM).Msg("No commercial trades collected")
		return report.Finish(), nil
	}
	if _, err := c.deps.Writer.WriteText(c.category, "commercial_real_estate.txt", strings.Join(sections, "\n")+"\n"); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}

