// Package signal fuses chart indicators with the latest briefing into a
// directional trading recommendation.
package signal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/common"
	"github.com/ternarybob/augur/internal/interfaces"
	"github.com/ternarybob/augur/internal/models"
	"github.com/ternarybob/augur/internal/services/llm"
	"github.com/ternarybob/augur/internal/services/loader"
)

// ErrMarketDataUnavailable is returned when candles cannot be fetched
var ErrMarketDataUnavailable = errors.New("market data unavailable")

const (
	SentimentLimit      = 500
	NoSentiment         = "No market analysis data."
	SentimentLoadFailed = "Failed to load market analysis."
	NoPosition          = "none"
	PositionLookupFail  = "lookup failed"
	AnalysisFailed      = "AI analysis failed"
	quoteCurrency       = "USDT"
)

// MarketData is the exchange surface the advisor reads
type MarketData interface {
	FetchCandles(ctx context.Context, instID, timeframe string, limit int) ([]models.Candle, error)
	FetchBalance(ctx context.Context, ccy string) (float64, error)
	FetchPositions(ctx context.Context, instID string) ([]models.Position, error)
}

// Advisor produces technical signals. It holds no persisted state.
type Advisor struct {
	market   MarketData
	llm      interfaces.LLMService
	retry    *llm.RetryPolicy
	insights interfaces.InsightStorage
	config   common.SignalConfig
	now      func() time.Time
	logger   arbor.ILogger
}

// NewAdvisor creates a signal advisor
func NewAdvisor(config *common.Config, market MarketData, llmService interfaces.LLMService, insights interfaces.InsightStorage, logger arbor.ILogger) *Advisor {
	return &Advisor{
		market:   market,
		llm:      llmService,
		retry:    llm.NewRetryPolicy(config.Synthesis.RetryAttempts, config.Synthesis.RetryCooldown.Std(), logger),
		insights: insights,
		config:   config.Signal,
		now:      time.Now,
		logger:   logger,
	}
}

// Analyze fetches candles, computes indicators and asks the LLM for a
// recommendation. Returns ErrMarketDataUnavailable when candles cannot be read.
func (a *Advisor) Analyze(ctx context.Context) (*models.TechnicalSignal, error) {
	candles, err := a.market.FetchCandles(ctx, a.config.InstrumentID, a.config.Timeframe, a.config.Candles)
	if err != nil {
		a.logger.Error().Err(err).Str("instrument", a.config.InstrumentID).Msg("Failed to fetch candles")
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%w: no candles returned", ErrMarketDataUnavailable)
	}

	closes, high, low := Window(candles)
	price := closes[len(closes)-1]
	rsi := RSI(closes, a.config.RSIPeriod)

	signal := &models.TechnicalSignal{
		Symbol:      a.config.Symbol,
		Timeframe:   a.config.Timeframe,
		Price:       price,
		Fibonacci:   FibonacciLevels(high, low),
		Trend:       Trend(closes, price),
		Account:     a.account(ctx),
		Sentiment:   a.sentiment(ctx),
		GeneratedAt: a.now(),
	}
	if last := rsi[len(rsi)-1]; !math.IsNaN(last) {
		signal.RSI = &last
	}

	comment, err := a.retry.Complete(ctx, a.llm, buildPrompt(signal))
	if err != nil {
		a.logger.Error().Err(err).Msg("Signal recommendation failed")
		comment = AnalysisFailed
	}
	signal.Recommendation = ParseRecommendation(comment)

	a.logger.Info().
		Str("symbol", signal.Symbol).
		Float64("price", signal.Price).
		Str("direction", string(signal.Recommendation.Direction)).
		Msg("Technical signal generated")

	return signal, nil
}

func (a *Advisor) sentiment(ctx context.Context) string {
	report, err := a.insights.Latest(ctx)
	if errors.Is(err, interfaces.ErrNotFound) {
		return NoSentiment
	}
	if err != nil {
		a.logger.Warn().Err(err).Msg("Failed to load latest insight for sentiment")
		return SentimentLoadFailed
	}
	return loader.Truncate(report.Content, SentimentLimit)
}

func (a *Advisor) account(ctx context.Context) models.AccountSnapshot {
	balance, err := a.market.FetchBalance(ctx, quoteCurrency)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Balance lookup failed")
		return models.AccountSnapshot{Position: PositionLookupFail}
	}

	positions, err := a.market.FetchPositions(ctx, a.config.InstrumentID)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Position lookup failed")
		return models.AccountSnapshot{Position: PositionLookupFail}
	}

	snapshot := models.AccountSnapshot{Balance: balance, Position: NoPosition}
	if len(positions) > 0 && positions[0].Contracts > 0 {
		p := positions[0]
		snapshot.Position = fmt.Sprintf("%s (entry: %g, PnL: %g)", strings.ToUpper(p.Side), p.Entry, p.PnL)
	}
	return snapshot
}

func buildPrompt(s *models.TechnicalSignal) string {
	trend := "falling"
	if s.Trend == "up" {
		trend = "rising"
	}
	rsi := "n/a"
	if s.RSI != nil {
		rsi = fmt.Sprintf("%.1f", *s.RSI)
	}

	var fib strings.Builder
	for _, level := range s.Fibonacci {
		fmt.Fprintf(&fib, "- %g: %.1f\n", level.Ratio, level.Price)
	}

	return fmt.Sprintf(`You are a Bitcoin futures trading assistant.
Fuse the news sentiment and the chart indicators into a trading strategy.

[Market sentiment] %s...
[Technical indicators (%s candles)]
- Current price: %.1f
- Trend: %s (relative to the window mean)
- RSI: %s

[Fibonacci levels]
%s
[My account] %g USDT, position: %s

Answer briefly in exactly this format:
**Direction:** [LONG / SHORT / HOLD]
**Reason:** (one sentence)
**Strategy:** (entry and stop-loss recommendation)`,
		s.Sentiment, s.Timeframe, s.Price, trend, rsi, fib.String(), s.Account.Balance, s.Account.Position)
}

// ParseRecommendation extracts direction, reason and strategy from the
// model answer. The raw answer is always kept in Comment.
func ParseRecommendation(comment string) models.Recommendation {
	rec := models.Recommendation{Comment: comment}

	for _, line := range strings.Split(comment, "\n") {
		key, value, ok := strings.Cut(strings.ReplaceAll(line, "*", ""), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimLeft(strings.TrimSpace(key), "-• ")) {
		case "direction":
			rec.Direction = parseDirection(value)
		case "reason":
			rec.Reason = value
		case "strategy":
			rec.Strategy = value
		}
	}
	return rec
}

func parseDirection(value string) models.Direction {
	upper := strings.ToUpper(value)
	hasLong := strings.Contains(upper, "LONG")
	hasShort := strings.Contains(upper, "SHORT")
	switch {
	case hasLong && !hasShort:
		return models.DirectionLong
	case hasShort && !hasLong:
		return models.DirectionShort
	}
	return models.DirectionHold
}
