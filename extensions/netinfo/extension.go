// Package netinfo provides the built-in tasks that talk to the selected
// network: chain-id, block-number and a generic rpc passthrough.
package netinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/task"
)

// Extension implements task.Extension.
type Extension struct{}

// Register registers the netinfo tasks.
func (Extension) Register(r *task.Registry) error {
	if _, err := r.Define(task.New("chain-id").
		Description("Print the chain id reported by the selected network.").
		SetAction(onChainID)); err != nil {
		return err
	}

	if _, err := r.Define(task.New("block-number").
		Description("Print the latest block number of the selected network.").
		SetAction(onBlockNumber)); err != nil {
		return err
	}

	_, err := r.Define(task.New("rpc").
		Description("Send a raw JSON-RPC request to the selected network.").
		PositionalParam("method", cty.String).
		ParamDescription("JSON-RPC method name, e.g. eth_gasPrice.").
		OptionalParam("params", cty.String, cty.StringVal("[]")).
		ParamDescription("JSON array of request parameters.").
		SetAction(onRPC))
	return err
}

func onChainID(ctx context.Context, args task.Args, rt task.Runtime, super *task.Super) (cty.Value, error) {
	n, err := quantity(ctx, rt, "eth_chainId")
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberUIntVal(n), nil
}

func onBlockNumber(ctx context.Context, args task.Args, rt task.Runtime, super *task.Super) (cty.Value, error) {
	n, err := quantity(ctx, rt, "eth_blockNumber")
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NumberUIntVal(n), nil
}

func onRPC(ctx context.Context, args task.Args, rt task.Runtime, super *task.Super) (cty.Value, error) {
	method := args["method"].AsString()

	var params any
	if err := json.Unmarshal([]byte(args["params"].AsString()), &params); err != nil {
		return cty.NilVal, fmt.Errorf("params is not a valid JSON document: %w", err)
	}

	p, err := rt.Provider()
	if err != nil {
		return cty.NilVal, err
	}
	raw, err := p.Request(ctx, method, params)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.StringVal(string(raw)), nil
}

// quantity performs a parameterless call returning a hex quantity and parses
// it to an integer.
func quantity(ctx context.Context, rt task.Runtime, method string) (uint64, error) {
	logger := ctxlog.FromContext(ctx).With("method", method)

	p, err := rt.Provider()
	if err != nil {
		return 0, err
	}
	raw, err := p.Request(ctx, method, nil)
	if err != nil {
		return 0, err
	}

	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return 0, fmt.Errorf("%s returned a non-string result %q: %w", method, string(raw), err)
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(hex, "0x"), 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%s returned a malformed quantity %q: %w", method, hex, err)
	}
	logger.Debug("Quantity call resolved.", "value", n)
	return n, nil
}
