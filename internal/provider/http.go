package provider

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"resty.dev/v3"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/rterr"
)

// HTTPProvider speaks JSON-RPC 2.0 over plain HTTP(S).
type HTTPProvider struct {
	url    string
	client *resty.Client
	nextID atomic.Uint64
}

// NewHTTP creates a provider that POSTs JSON-RPC requests to the given URL.
func NewHTTP(url string, timeout time.Duration) *HTTPProvider {
	client := resty.New()
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPProvider{url: url, client: client}
}

// Request implements Provider.
func (p *HTTPProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	id := p.nextID.Add(1)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Sending JSON-RPC request.", "url", p.url, "method", method, "id", id)

	var out rpcResponse
	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(newRequest(id, method, params)).
		SetResult(&out).
		Post(p.url)
	if err != nil {
		return nil, rterr.New(rterr.KindProviderUnavailable, "request to %q failed", p.url).
			WithDetail("url", p.url).WithDetail("method", method).WithCause(err)
	}
	if res.IsError() {
		return nil, rterr.New(rterr.KindProviderUnavailable, "endpoint %q returned status %s", p.url, res.Status()).
			WithDetail("url", p.url).WithDetail("method", method).WithDetail("status", res.StatusCode())
	}
	if out.Error != nil {
		return nil, out.Error
	}
	logger.Debug("JSON-RPC response received.", "method", method, "id", id)
	return out.Result, nil
}

// Close implements Provider.
func (p *HTTPProvider) Close() error {
	return p.client.Close()
}
