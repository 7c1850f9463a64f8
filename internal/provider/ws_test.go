package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wsRPCServer upgrades the connection and answers JSON-RPC frames. Before
// each response it emits one unsolicited frame to exercise frame skipping.
func wsRPCServer(t *testing.T) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var req rpcRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}

			// Subscription-style noise with an id no request uses.
			_ = conn.WriteJSON(rpcResponse{JSONRPC: "2.0", ID: 0, Result: json.RawMessage(`"noise"`)})

			resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
			if req.Method == "eth_failing" {
				resp.Error = &RPCError{Code: -32000, Message: "boom"}
			} else {
				resp.Result = json.RawMessage(`"0x10"`)
			}
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSProvider_RequestSkipsUnsolicitedFrames(t *testing.T) {
	t.Parallel()

	srv := wsRPCServer(t)
	defer srv.Close()

	p, err := NewWebSocket(wsURL(srv), 5*time.Second)
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		raw, err := p.Request(ctx, "eth_blockNumber", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `"0x10"`, string(raw))
	}
}

func TestWSProvider_ExpiredDeadlineDoesNotPoisonLaterRequests(t *testing.T) {
	t.Parallel()

	srv := wsRPCServer(t)
	defer srv.Close()

	p, err := NewWebSocket(wsURL(srv), 5*time.Second)
	require.NoError(t, err)
	defer p.Close()

	timed, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err = p.Request(timed, "eth_blockNumber", nil)
	require.NoError(t, err)

	// Once the first call's deadline has passed, a deadline-free call on
	// the same connection must still succeed.
	time.Sleep(700 * time.Millisecond)
	raw, err := p.Request(context.Background(), "eth_blockNumber", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x10"`, string(raw))
}

func TestWSProvider_RemoteErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := wsRPCServer(t)
	defer srv.Close()

	p, err := NewWebSocket(wsURL(srv), 5*time.Second)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Request(context.Background(), "eth_failing", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestWSProvider_DialFailure(t *testing.T) {
	t.Parallel()

	_, err := NewWebSocket("ws://127.0.0.1:1/unreachable", time.Second)
	require.Error(t, err)
}
