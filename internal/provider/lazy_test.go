package provider

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	closed atomic.Bool
}

func (f *fakeProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return json.RawMessage(`"0x0"`), nil
}

func (f *fakeProvider) Close() error {
	f.closed.Store(true)
	return nil
}

func TestLazy_ConstructsAtMostOnce(t *testing.T) {
	t.Parallel()

	var constructions atomic.Int32
	handle := NewLazy(func() (Provider, error) {
		constructions.Add(1)
		return &fakeProvider{}, nil
	})

	assert.False(t, handle.Created())

	var wg sync.WaitGroup
	results := make([]Provider, 32)
	for i := range results {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := handle.Get()
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), constructions.Load(), "first access must be single-flight")
	assert.True(t, handle.Created())
	for _, p := range results {
		assert.Same(t, results[0], p, "every access must observe the same instance")
	}
}

func TestLazy_ConstructionErrorIsMemoized(t *testing.T) {
	t.Parallel()

	var constructions atomic.Int32
	handle := NewLazy(func() (Provider, error) {
		constructions.Add(1)
		return nil, assert.AnError
	})

	_, err := handle.Get()
	require.ErrorIs(t, err, assert.AnError)
	_, err = handle.Get()
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, int32(1), constructions.Load())
}

func TestLazy_CloseOnlyTouchesConstructedProviders(t *testing.T) {
	t.Parallel()

	fake := &fakeProvider{}
	var constructions atomic.Int32
	handle := NewLazy(func() (Provider, error) {
		constructions.Add(1)
		return fake, nil
	})

	require.NoError(t, handle.Close())
	assert.Equal(t, int32(0), constructions.Load(), "Close must not force construction")

	_, err := handle.Get()
	require.NoError(t, err)
	require.NoError(t, handle.Close())
	assert.True(t, fake.closed.Load())
}
