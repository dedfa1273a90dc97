package eodhd

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
}

func TestGetDailyChange_RealTime(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/TNX.INDX", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		w.Write([]byte(`{"code":"TNX.INDX","close":4.21,"previousClose":4.1,"change":0.11,"change_p":2.68}`))
	})

	price, change, err := client.GetDailyChange(t.Context(), "TNX.INDX", time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 4.21, price, 1e-9)
	assert.InDelta(t, 2.68, change, 1e-9)
}

func TestGetDailyChange_FallsBackToEOD(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/real-time/HG.COMM":
			w.Write([]byte(`{"code":"HG.COMM","close":"NA","change_p":"NA"}`))
		case "/eod/HG.COMM":
			w.Write([]byte(`[{"date":"2026-10-15","close":4.0},{"date":"2026-10-16","close":4.2}]`))
		default:
			http.NotFound(w, r)
		}
	})

	price, change, err := client.GetDailyChange(t.Context(), "HG.COMM", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 4.2, price, 1e-9)
	assert.InDelta(t, 5.0, change, 1e-9)
}

func TestGet_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})

	_, err := client.GetRealTimeQuote(t.Context(), "VIX.INDX")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "/real-time/VIX.INDX", apiErr.Endpoint)
}

func TestGetEOD_ParsesDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d", r.URL.Query().Get("period"))
		w.Write([]byte(`[{"date":"2026-10-16","open":1,"high":2,"low":0.5,"close":1.5,"volume":10}]`))
	})

	bars, err := client.GetEOD(t.Context(), "SOX.INDX")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), bars[0].Date)
}
