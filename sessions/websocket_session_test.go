package sessions

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Desarso/intentagent/models"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialChat(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(f.engine)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/chat"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestWebSocket_TurnPerFrame(t *testing.T) {
	f := newFixture(t, reply("¡Hola!"))
	conn := dialChat(t, f)

	for i := 0; i < 2; i++ {
		require.NoError(t, conn.WriteJSON(models.Chat_Request{TenantID: "acme", SessionID: "ws1", Message: "hola"}))

		var frame map[string]map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "chat_response", frame["response"]["type"])
		assert.Equal(t, "¡Hola!", frame["response"]["response"])
	}

	w := f.do(t, "GET", "/tenants/acme/sessions/ws1/history", nil)
	var history models.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Messages, 4)
}

func TestWebSocket_InvalidFramesKeepConnectionOpen(t *testing.T) {
	f := newFixture(t, reply("ok"))
	conn := dialChat(t, f)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var errFrame map[string]string
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.Contains(t, errFrame["error"], "invalid request")
	assert.NotEmpty(t, errFrame["request_id"])

	require.NoError(t, conn.WriteJSON(models.Chat_Request{TenantID: "acme", SessionID: "ws1"}))
	errFrame = nil
	require.NoError(t, conn.ReadJSON(&errFrame))
	assert.NotEmpty(t, errFrame["error"])

	require.NoError(t, conn.WriteJSON(models.Chat_Request{TenantID: "acme", SessionID: "ws1", Message: "hola"}))
	var ok map[string]map[string]interface{}
	require.NoError(t, conn.ReadJSON(&ok))
	assert.Equal(t, "ok", ok["response"]["response"])
}
