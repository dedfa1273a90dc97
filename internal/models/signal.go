package models

import "time"

// Candle is one OHLCV bar
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Position is an open derivatives position
type Position struct {
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Contracts float64 `json:"contracts"`
	Entry     float64 `json:"entry"`
	PnL       float64 `json:"pnl"`
}

// FibonacciLevel is a retracement level between the window high and low
type FibonacciLevel struct {
	Ratio float64 `json:"ratio"`
	Price float64 `json:"price"`
}

// AccountSnapshot summarizes the trading account at signal time
type AccountSnapshot struct {
	Balance  float64 `json:"balance"`
	Position string  `json:"position"`
}

// Direction is the recommended trade direction
type Direction string

const (
	DirectionLong  Direction = "LONG"
	DirectionShort Direction = "SHORT"
	DirectionHold  Direction = "HOLD"
)

// Recommendation is the parsed LLM answer
type Recommendation struct {
	Direction Direction `json:"direction,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	Comment   string    `json:"comment"`
}

// TechnicalSignal is the ephemeral result of one technical analysis.
// RSI is nil when the window is too short to define it.
type TechnicalSignal struct {
	Symbol         string           `json:"symbol"`
	Timeframe      string           `json:"timeframe"`
	Price          float64          `json:"price"`
	RSI            *float64         `json:"rsi"`
	Fibonacci      []FibonacciLevel `json:"fibonacci"`
	Trend          string           `json:"trend"`
	Account        AccountSnapshot  `json:"account"`
	Sentiment      string           `json:"sentiment"`
	Recommendation Recommendation   `json:"recommendation"`
	GeneratedAt    time.Time        `json:"generated_at"`
}
