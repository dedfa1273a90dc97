package eodhd

import (
	"bytes"
	"math"
	"strconv"
	"time"
)

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// Number decodes EODHD numeric fields, which arrive as "NA" when missing.
// Missing values decode to NaN.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "NA" || string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Valid reports whether the value was present
func (n Number) Valid() bool {
	return !math.IsNaN(float64(n))
}

// Quote is the real-time endpoint payload.
type Quote struct {
	Code          string `json:"code"`
	Timestamp     int64  `json:"timestamp"`
	Open          Number `json:"open"`
	High          Number `json:"high"`
	Low           Number `json:"low"`
	Close         Number `json:"close"`
	PreviousClose Number `json:"previousClose"`
	Change        Number `json:"change"`
	ChangePct     Number `json:"change_p"`
}
