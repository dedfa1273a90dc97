package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/augur/internal/models"
)

func TestWebSocketHandler_BroadcastBatchEvent(t *testing.T) {
	handler := NewWebSocketHandler(arbor.NewLogger())
	server := httptest.NewServer(http.HandlerFunc(handler.HandleWebSocket))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	const numSubscribers = 3
	conns := make([]*websocket.Conn, numSubscribers)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn

		var hello WSMessage
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&hello))
		assert.Equal(t, "hello", hello.Type)
	}

	assert.Eventually(t, func() bool { return handler.ClientCount() == numSubscribers }, 2*time.Second, 10*time.Millisecond)

	handler.BroadcastBatchEvent(models.BatchEvent{Type: models.StepFailed, Step: "news", Wave: 3, Error: "401"})

	for _, conn := range conns {
		var msg struct {
			Type    string            `json:"type"`
			Payload models.BatchEvent `json:"payload"`
		}
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, "batch_event", msg.Type)
		assert.Equal(t, models.StepFailed, msg.Payload.Type)
		assert.Equal(t, "news", msg.Payload.Step)
	}

	conns[0].Close()
	assert.Eventually(t, func() bool { return handler.ClientCount() == numSubscribers-1 }, 2*time.Second, 10*time.Millisecond)
}
