package okx

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/augur/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the OKX API.
	DefaultBaseURL = "https://www.okx.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Credentials hold the OKX API key triple.
type Credentials struct {
	APIKey     string
	SecretKey  string
	Passphrase string
}

func (c Credentials) complete() bool {
	return c.APIKey != "" && c.SecretKey != "" && c.Passphrase != ""
}

// Client is an OKX API client.
type Client struct {
	baseURL     string
	credentials Credentials
	httpClient  *http.Client
	logger      arbor.ILogger
	limiter     *rate.Limiter
	now         func() time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithClock overrides the signing timestamp source.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new OKX API client.
func NewClient(credentials Credentials, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		credentials: credentials,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Sign computes the OK-ACCESS-SIGN header value.
func Sign(secret, timestamp, method, requestPath, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + method + requestPath + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// get performs a GET request and decodes the data array into result.
func (c *Client) get(ctx context.Context, path string, params url.Values, private bool, result interface{}) error {
	if private && !c.credentials.complete() {
		return &AuthError{Endpoint: path}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	requestPath := path
	if len(params) > 0 {
		requestPath += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+requestPath, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if private {
		ts := c.now().UTC().Format("2006-01-02T15:04:05.000Z")
		req.Header.Set("OK-ACCESS-KEY", c.credentials.APIKey)
		req.Header.Set("OK-ACCESS-SIGN", Sign(c.credentials.SecretKey, ts, http.MethodGet, requestPath, ""))
		req.Header.Set("OK-ACCESS-TIMESTAMP", ts)
		req.Header.Set("OK-ACCESS-PASSPHRASE", c.credentials.Passphrase)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("path", path).
			Bool("private", private).
			Msg("OKX API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: string(body), Endpoint: path}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if env.Code != "0" {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Msg, Endpoint: path}
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

// FetchCandles returns up to limit candles for instID, oldest first.
func (c *Client) FetchCandles(ctx context.Context, instID, timeframe string, limit int) ([]models.Candle, error) {
	params := url.Values{}
	params.Set("instId", instID)
	params.Set("bar", Bar(timeframe))
	params.Set("limit", strconv.Itoa(limit))

	var rows [][]string
	if err := c.get(ctx, "/api/v5/market/candles", params, false, &rows); err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := parseCandle(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}

	// OKX returns newest first
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time.Before(candles[j].Time) })
	return candles, nil
}

func parseCandle(row []string) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("malformed candle row: %v", row)
	}

	values := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("malformed candle field %d: %w", i, err)
		}
		values[i] = v
	}

	return models.Candle{
		Time:   time.UnixMilli(int64(values[0])).UTC(),
		Open:   values[1],
		High:   values[2],
		Low:    values[3],
		Close:  values[4],
		Volume: values[5],
	}, nil
}

// FetchBalance returns the available balance of ccy.
func (c *Client) FetchBalance(ctx context.Context, ccy string) (float64, error) {
	params := url.Values{}
	params.Set("ccy", ccy)

	var data []balanceData
	if err := c.get(ctx, "/api/v5/account/balance", params, true, &data); err != nil {
		return 0, err
	}

	for _, account := range data {
		for _, d := range account.Details {
			if d.Ccy == ccy {
				return parseFloat(d.AvailBal), nil
			}
		}
	}
	return 0, nil
}

// FetchPositions returns the non-empty positions held on instID.
func (c *Client) FetchPositions(ctx context.Context, instID string) ([]models.Position, error) {
	params := url.Values{}
	params.Set("instId", instID)

	var data []positionData
	if err := c.get(ctx, "/api/v5/account/positions", params, true, &data); err != nil {
		return nil, err
	}

	var positions []models.Position
	for _, p := range data {
		contracts := parseFloat(p.Pos)
		if contracts == 0 {
			continue
		}

		side := p.PosSide
		if side == "" || side == "net" {
			side = "long"
			if contracts < 0 {
				side = "short"
			}
		}

		positions = append(positions, models.Position{
			Symbol:    p.InstID,
			Side:      side,
			Contracts: math.Abs(contracts),
			Entry:     parseFloat(p.AvgPx),
			PnL:       parseFloat(p.Upl),
		})
	}
	return positions, nil
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
