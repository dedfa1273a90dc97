// Package okx provides a minimal client for the OKX v5 REST API covering
// market candles and the account endpoints used by the technical signal.
package okx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// envelope is the common OKX response wrapper
type envelope struct {
	Code string          `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// APIError represents an error from the OKX API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OKX API error: %s (status: %d, code: %s, endpoint: %s)", e.Message, e.StatusCode, e.Code, e.Endpoint)
}

// AuthError is returned when a private endpoint is called without credentials.
type AuthError struct {
	Endpoint string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("OKX credentials not configured for %s", e.Endpoint)
}

type balanceData struct {
	Details []balanceDetail `json:"details"`
}

type balanceDetail struct {
	Ccy      string `json:"ccy"`
	AvailBal string `json:"availBal"`
}

type positionData struct {
	InstID  string `json:"instId"`
	Pos     string `json:"pos"`
	PosSide string `json:"posSide"`
	AvgPx   string `json:"avgPx"`
	Upl     string `json:"upl"`
}

// Bar converts a timeframe such as "4h" or "15m" into OKX bar notation.
// Hour and day bars are upper case on OKX, minute bars are lower case.
func Bar(timeframe string) string {
	tf := strings.TrimSpace(timeframe)
	if tf == "" {
		return "4H"
	}
	unit := tf[len(tf)-1]
	switch unit {
	case 'h', 'd', 'w':
		return tf[:len(tf)-1] + strings.ToUpper(string(unit))
	}
	return tf
}
