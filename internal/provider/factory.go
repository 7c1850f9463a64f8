package provider

import (
	"net/url"
	"time"

	"github.com/vk/forgerun/internal/config"
	"github.com/vk/forgerun/internal/rterr"
)

// DefaultFactory builds the built-in provider for a network by URL scheme:
// http/https use the HTTP transport, ws/wss the websocket transport.
//
// The solidity and paths settings are part of the factory contract so
// alternative factories (e.g. one that boots an in-process development node)
// can use them; the built-in transports only need the endpoint itself.
func DefaultFactory(name string, cfg *config.Network, solidity config.Solidity, paths config.Paths) (Provider, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, rterr.New(rterr.KindProviderUnavailable, "network %q has an unparsable url %q", name, cfg.URL).
			WithDetail("network", name).WithDetail("url", cfg.URL).WithCause(err)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch u.Scheme {
	case "http", "https":
		return NewHTTP(cfg.URL, timeout), nil
	case "ws", "wss":
		return NewWebSocket(cfg.URL, timeout)
	default:
		return nil, rterr.New(rterr.KindProviderUnavailable, "network %q uses unsupported url scheme %q", name, u.Scheme).
			WithDetail("network", name).WithDetail("url", cfg.URL)
	}
}
