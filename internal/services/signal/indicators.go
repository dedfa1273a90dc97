package signal

import (
	"math"

	"github.com/ternarybob/augur/internal/models"
)

// FibonacciRatios are the retracement ratios reported with every signal
var FibonacciRatios = []float64{0.236, 0.382, 0.5, 0.618, 0.786}

// RSI computes the relative strength index with Wilder smoothing.
// The first period values are NaN. A zero average loss yields 100.
func RSI(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) <= period {
		return out
	}

	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if change > 0 {
			g = change
		} else {
			l = -change
		}
		avgGain = (avgGain*(p-1) + g) / p
		avgLoss = (avgLoss*(p-1) + l) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// FibonacciLevels returns high - (high-low)*r for each retracement ratio
func FibonacciLevels(high, low float64) []models.FibonacciLevel {
	diff := high - low
	levels := make([]models.FibonacciLevel, len(FibonacciRatios))
	for i, r := range FibonacciRatios {
		levels[i] = models.FibonacciLevel{Ratio: r, Price: high - diff*r}
	}
	return levels
}

// Trend is "up" when price is above the mean close, otherwise "down"
func Trend(closes []float64, price float64) string {
	if len(closes) == 0 {
		return "down"
	}
	var sum float64
	for _, c := range closes {
		sum += c
	}
	if price > sum/float64(len(closes)) {
		return "up"
	}
	return "down"
}

// Window returns the closes and the high/low across candles
func Window(candles []models.Candle) (closes []float64, high, low float64) {
	if len(candles) == 0 {
		return nil, 0, 0
	}
	closes = make([]float64, len(candles))
	high, low = candles[0].High, candles[0].Low
	for i, c := range candles {
		closes[i] = c.Close
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	return closes, high, low
}
