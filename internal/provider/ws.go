package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/rterr"
)

// WSProvider speaks JSON-RPC 2.0 over a single websocket connection.
//
// Calls are serialized: one request is written and its response read before
// the next call proceeds. Unsolicited frames (e.g. subscription
// notifications) that arrive in between are discarded.
type WSProvider struct {
	url  string
	conn *websocket.Conn

	// reqMu serializes Request calls; the runtime itself never issues
	// concurrent calls but task actions may.
	reqMu  chan struct{}
	nextID uint64
}

// NewWebSocket dials the given ws:// or wss:// URL and returns a connected
// provider.
func NewWebSocket(url string, timeout time.Duration) (*WSProvider, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, rterr.New(rterr.KindProviderUnavailable, "websocket dial to %q failed", url).
			WithDetail("url", url).WithCause(err)
	}
	p := &WSProvider{url: url, conn: conn, reqMu: make(chan struct{}, 1)}
	p.reqMu <- struct{}{}
	return p, nil
}

// Request implements Provider.
func (p *WSProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	select {
	case <-p.reqMu:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { p.reqMu <- struct{}{} }()

	p.nextID++
	id := p.nextID
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Sending JSON-RPC request over websocket.", "url", p.url, "method", method, "id", id)

	// Deadlines stick to the connection across calls, so set them fresh on
	// every request: the zero time from a deadline-free context clears
	// whatever an earlier timed call left behind.
	deadline, _ := ctx.Deadline()
	_ = p.conn.SetWriteDeadline(deadline)
	_ = p.conn.SetReadDeadline(deadline)

	if err := p.conn.WriteJSON(newRequest(id, method, params)); err != nil {
		return nil, rterr.New(rterr.KindProviderUnavailable, "websocket write to %q failed", p.url).
			WithDetail("url", p.url).WithDetail("method", method).WithCause(err)
	}

	for {
		var out rpcResponse
		if err := p.conn.ReadJSON(&out); err != nil {
			return nil, rterr.New(rterr.KindProviderUnavailable, "websocket read from %q failed", p.url).
				WithDetail("url", p.url).WithDetail("method", method).WithCause(err)
		}
		if out.ID != id {
			logger.Debug("Discarding unsolicited websocket frame.", "frame_id", out.ID, "want_id", id)
			continue
		}
		if out.Error != nil {
			return nil, out.Error
		}
		return out.Result, nil
	}
}

// Close implements Provider.
func (p *WSProvider) Close() error {
	return p.conn.Close()
}
