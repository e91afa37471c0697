package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialAgents(t *testing.T, f *fakeFinder) (*websocket.Conn, context.Context) {
	t.Helper()
	ctrl := NewAgentsController(NewDocumentsController(&fakeExtractor{}, f, "", "gpt-4o-mini"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctrl.AgentWebSocket(r.Context(), conn)
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func readFrame(t *testing.T, ctx context.Context, conn *websocket.Conn) StreamMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg StreamMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestAgentWebSocketStreamsStepsThenResult(t *testing.T) {
	conn, ctx := dialAgents(t, &fakeFinder{Steps: 2})

	require.NoError(t, conn.Write(ctx, websocket.MessageText,
		[]byte(`{"kind":"pdf","website_url":"https://a.com","query":"AI"}`)))

	for i := 1; i <= 2; i++ {
		msg := readFrame(t, ctx, conn)
		assert.Equal(t, "step", msg.Type)
		require.NotNil(t, msg.Step)
		assert.Equal(t, i, msg.Step.Step)
	}
	msg := readFrame(t, ctx, conn)
	assert.Equal(t, "result", msg.Type)
	require.NotNil(t, msg.Result)
	assert.True(t, msg.Result.Success)
	assert.Equal(t, "found AI", msg.Result.SearchSummary)
}

func TestAgentWebSocketReportsBadRequests(t *testing.T) {
	conn, ctx := dialAgents(t, &fakeFinder{})

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))
	assert.Equal(t, StreamMessage{Type: "error", Error: "invalid json"}, readFrame(t, ctx, conn))

	require.NoError(t, conn.Write(ctx, websocket.MessageBinary, []byte{1, 2}))
	assert.Equal(t, "unsupported data", readFrame(t, ctx, conn).Error)

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"kind":"documents","website_url":"a.com"}`)))
	msg := readFrame(t, ctx, conn)
	assert.Equal(t, "error", msg.Type)
	assert.Contains(t, msg.Error, "query")

	// the connection survives errors
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"kind":"annual_report","website_url":"a.com"}`)))
	assert.Equal(t, "result", readFrame(t, ctx, conn).Type)
}
