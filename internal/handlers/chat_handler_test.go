package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func TestChatLogHandler_SaveAll(t *testing.T) {
	h := NewChatLogHandler(&fakeChats{}, arbor.NewLogger())
	body := `[{"question":"Is the Fed cutting?","answer":"Maybe"},{"question":"BTC outlook?","answer":"Range"}]`

	post := func(payload string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.SaveAllHandler(rec, httptest.NewRequest(http.MethodPost, "/save_all", strings.NewReader(payload)))
		return rec
	}

	rec := post(body)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(2), resp["saved_count"])

	// same questions again are not stored twice
	rec = post(body)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["saved_count"])

	assert.Equal(t, http.StatusBadRequest, post(`{"question":"not an array"}`).Code)
}

func TestChatLogHandler_Errors(t *testing.T) {
	h := NewChatLogHandler(&fakeChats{err: errors.New("db locked")}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	h.SaveAllHandler(rec, httptest.NewRequest(http.MethodPost, "/save_all", strings.NewReader(`[]`)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.SaveAllHandler(rec, httptest.NewRequest(http.MethodGet, "/save_all", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
