package collectors

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ternarybob/augur/internal/models"
)

// DefaultOnbidURL lists public-auction items by usage
const DefaultOnbidURL = "http://openapi.onbid.co.kr/openapi/services/ThingInfoInquireSvc/getUnifyUsageCltr"

type onbidResponse struct {
	ResultCode string      `xml:"header>resultCode"`
	ResultMsg  string      `xml:"header>resultMsg"`
	Items      []onbidItem `xml:"body>items>item"`
}

type onbidItem struct {
	Name     string `xml:"CLTR_NM"`
	MinBid   string `xml:"MIN_BID_PRC"`
	Category string `xml:"CTGR_FULL_NM"`
	Address  string `xml:"LDNM_ADRS"`
	Goods    string `xml:"GOODS_NM"`
}

var wonPrinter = message.NewPrinter(language.English)

// InvestmentTags classifies an auction item for a quick read
func InvestmentTags(name, category, goods string) []string {
	var tags []string
	text := strings.ReplaceAll(name+category+goods, " ", "")
	if (strings.Contains(text, "도로") || strings.Contains(category, "도")) && !strings.Contains(category, "대지") {
		tags = append(tags, "[road]")
	}
	if strings.Contains(text, "지분") || strings.Contains(text, "여지") {
		tags = append(tags, "[share]")
	}
	for _, kw := range []string{"아파트", "다세대", "빌라", "오피스텔", "주거"} {
		if strings.Contains(text, kw) {
			tags = append(tags, "[residential]")
			break
		}
	}
	return append(tags, "[sale]")
}

// Line renders one auction item
func (i onbidItem) Line() string {
	price, _ := strconv.ParseInt(strings.TrimSpace(i.MinBid), 10, 64)
	tags := strings.Join(InvestmentTags(i.Name, i.Category, i.Goods), " ")
	return wonPrinter.Sprintf("- %s %s | %d KRW | %s", tags, i.Name, price, i.Address)
}

// OnbidCollector lists public auction items in the configured provinces
type OnbidCollector struct {
	base
	endpoint string
}

func NewOnbidCollector(deps *Deps) *OnbidCollector {
	return &OnbidCollector{
		base:     base{name: "onbid", category: models.CategoryAssets, deps: deps},
		endpoint: DefaultOnbidURL,
	}
}

func (c *OnbidCollector) Collect(ctx context.Context) (*models.CollectionReport, error) {
	report := c.newReport()
	key := c.deps.Config.Collectors.DataGoKr.ServiceKey
	if key == "" {
		return report.Finish(), errNoServiceKey
	}

	lines := []string{"DATE: " + c.deps.now().Format("2006-01-02"), ""}
	for _, region := range c.deps.Config.Collectors.OnbidRegions {
		params := url.Values{}
		params.Set("serviceKey", key)
		params.Set("pageNo", "1")
		params.Set("numOfRows", "50")
		params.Set("DPSL_MTD_CD", "0001")
		params.Set("SIDO", region)

		var resp onbidResponse
		if err := c.deps.Fetcher.GetXML(ctx, c.name, c.endpoint+"?"+params.Encode(), nil, &resp); err != nil {
			report.Failed(region, err)
		} else if resp.ResultCode != "00" {
			report.Failed(region, &ParseError{Source: c.name, Err: fmt.Errorf("result code %s: %s", resp.ResultCode, resp.ResultMsg)})
		} else {
			for _, item := range resp.Items {
				lines = append(lines, item.Line())
			}
			report.Saved(region)
		}

		if err := c.deps.sleep(ctx, 500*time.Millisecond); err != nil {
			return report.Finish(), err
		}
	}

	if _, err := c.deps.Writer.WriteText(c.category, "onbid_investment_list.txt", strings.Join(lines, "\n")+"\n"); err != nil {
		return report.Finish(), err
	}
	return report.Finish(), nil
}
