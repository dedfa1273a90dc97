package synthesis

import (
	"fmt"
	"time"
)

// CoreInterests stands in for recent chat questions when none exist
const CoreInterests = `1. Tech & AI: LLM, Agentic Workflow, Backend Architecture
2. Macro Investment: US Tech Stocks, Bitcoin, Interest Rates
3. Real Estate (Alpha): Gangnam Commercial Trend, Auction (Onbid)
4. Career & Market Signal: Hiring Trends (which stack is hot?)`

func assetPrompt(corpus string) string {
	return fmt.Sprintf(`You are a real-estate and public-auction specialist. Analyse the data below and extract the key insights.

[Data]
%s

[Goals]
1. Identify the commercial trend in the Gangnam district (which business types are rising).
2. Spot undervalued opportunities (road frontage, price gaps) in the Onbid auction and transaction data.
3. Include notable IPO calendar signals.
4. Summarise the conclusion in three lines.`, corpus)
}

func techPrompt(corpus, interests string) string {
	return fmt.Sprintf(`You are a tech HR and technology strategist. Use the material below together with my interests and recent questions.

[My interests / recent questions]
%s

[Material]
%s

[Goals]
1. Extract the technology stacks most requested in hiring.
2. Identify the technology trends to watch from global reports and AI news.
3. Relate them to my interests.
4. Summarise three action items a developer should prepare.`, interests, corpus)
}

func fusionPrompt(assetInsight, techInsight, interests, advisory string) string {
	return fmt.Sprintf(`You are my full-stack investment strategy director.

[My interests]
%s

[Report 1: assets / real estate]
%s

[Report 2: technology / career]
%s

[Seasonal calendar]
%s

[Guidance: standing on the shoulders of giants]
1. Confluence check: if two or more of Peter Thiel (monopoly), Cathie Wood (growth), George Soros (momentum) and Larry Fink (capital) view a sector positively, read it as a Strong Buy signal.
2. Conflict check: if Larry Fink (conservative) warns while Cathie Wood (aggressive) buys, read it as widening volatility.

Fuse the two reports into the daily briefing. Do not repeat the title line; start directly with section 1.

[Format]
### 1. Real Estate Alpha
* (asset report summary and concrete opportunities)

### 2. Tech & Career Signal
* (technology report summary and learning direction)

### 3. Insight Fusion
* (connect the two domains)

### 4. Action Plan
* **Invest:** (listings or regions to check)
* **Dev:** (technology to learn)

### 5. Critical Question
* (one question that stretches my thinking)`, interests, assetInsight, techInsight, advisory)
}

// RenderBriefing wraps the fusion output in the fixed briefing header
func RenderBriefing(date time.Time, fusion string) string {
	return fmt.Sprintf("## Strategic Daily Briefing (%s)\n\n%s\n", date.Format("2006-01-02"), fusion)
}
