package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/forgerun/internal/rterr"
)

// rpcHandler answers eth_chainId and echoes params for anything else.
func rpcHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "2.0", req.JSONRPC)

		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID}
		switch req.Method {
		case "eth_chainId":
			resp.Result = json.RawMessage(`"0x7a69"`)
		case "eth_failing":
			resp.Error = &RPCError{Code: -32601, Message: "method not found"}
		default:
			payload, err := json.Marshal(req.Params)
			require.NoError(t, err)
			resp.Result = payload
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestHTTPProvider_Request(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rpcHandler(t))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	defer p.Close()

	raw, err := p.Request(context.Background(), "eth_chainId", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `"0x7a69"`, string(raw))
}

func TestHTTPProvider_ParamsForwarded(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rpcHandler(t))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	defer p.Close()

	raw, err := p.Request(context.Background(), "eth_echo", []any{"0xabc", true})
	require.NoError(t, err)
	assert.JSONEq(t, `["0xabc", true]`, string(raw))
}

func TestHTTPProvider_RemoteErrorSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(rpcHandler(t))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	defer p.Close()

	_, err := p.Request(context.Background(), "eth_failing", nil)
	require.Error(t, err)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestHTTPProvider_UnreachableEndpoint(t *testing.T) {
	t.Parallel()

	// A server that is already closed guarantees a connection error.
	srv := httptest.NewServer(rpcHandler(t))
	srv.Close()

	p := NewHTTP(srv.URL, time.Second)
	defer p.Close()

	_, err := p.Request(context.Background(), "eth_chainId", nil)
	require.Error(t, err)
	assert.True(t, rterr.IsKind(err, rterr.KindProviderUnavailable))
}

func TestHTTPProvider_RequestIDsIncrease(t *testing.T) {
	t.Parallel()

	var ids []uint64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		ids = append(ids, req.ID)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`null`)}))
	}))
	defer srv.Close()

	p := NewHTTP(srv.URL, 5*time.Second)
	defer p.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := p.Request(ctx, "eth_blockNumber", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)
}
