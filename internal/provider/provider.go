// Package provider hosts the network provider contract and its transports.
//
// A Provider is the request/response capability a selected network speaks.
// The runtime never constructs one eagerly: it wraps construction in a Lazy
// handle that builds the provider on first use and memoizes the result.
package provider

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/vk/forgerun/internal/config"
)

// Provider is the request/response capability for a network endpoint.
type Provider interface {
	// Request performs a single JSON-RPC call and returns the raw result
	// payload.
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Close releases the underlying transport.
	Close() error
}

// Factory constructs a provider for a named network. It receives the network
// configuration together with the compiler toolchain version and project
// paths, mirroring everything an external provider implementation may need.
type Factory func(name string, cfg *config.Network, solidity config.Solidity, paths config.Paths) (Provider, error)

// Network is the selected-network descriptor owned by the runtime
// environment: the chosen name, its configuration entry and the lazy handle
// for its provider. The handle here and the one exposed by the environment
// are the same object.
type Network struct {
	Name   string
	Config *config.Network
	Handle *Lazy
}

// Lazy defers provider construction until first use. Construction is
// single-flight and memoized, including a construction failure, so the
// factory runs at most once regardless of how many goroutines race on first
// access.
type Lazy struct {
	build   func() (Provider, error)
	once    sync.Once
	created atomic.Bool

	p   Provider
	err error
}

// NewLazy wraps the given construction function in a lazy, memoized handle.
func NewLazy(build func() (Provider, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the memoized provider, constructing it on first call.
func (l *Lazy) Get() (Provider, error) {
	l.once.Do(func() {
		l.p, l.err = l.build()
		l.created.Store(true)
	})
	return l.p, l.err
}

// Created reports whether the underlying provider has been constructed.
func (l *Lazy) Created() bool {
	return l.created.Load()
}

// Close closes the underlying provider if it was ever constructed.
func (l *Lazy) Close() error {
	if !l.created.Load() || l.p == nil {
		return nil
	}
	return l.p.Close()
}
