// Package task defines tasks, their parameter schemas and the registry that
// stores them.
//
// Definitions live in an arena indexed by id. A task name always points at
// the most recent definition for that name; an overriding definition keeps
// the id of the definition it replaced, forming a linear, acyclic override
// chain that the runtime walks when an action delegates to its parent.
package task

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/config"
	"github.com/vk/forgerun/internal/provider"
)

// Args is a raw or resolved argument map for a task invocation. Keys not
// declared by any parameter definition pass through resolution unchanged.
type Args map[string]cty.Value

// Runtime is the surface of the runtime environment visible to task actions.
// Actions receive it explicitly instead of reaching for ambient state.
type Runtime interface {
	// Config returns the resolved project configuration.
	Config() *config.Config

	// Network returns the selected network descriptor.
	Network() *provider.Network

	// Provider resolves the lazy provider handle for the selected network.
	Provider() (provider.Provider, error)

	// Registry returns the task registry the environment runs from.
	Registry() *Registry

	// Run resolves and executes another registered task.
	Run(ctx context.Context, name string, raw Args) (cty.Value, error)

	// Value returns an extension-attached environment member by name.
	Value(name string) (any, bool)
}

// Action is the work a task performs. It receives the validated argument
// map, the runtime environment and the capability to call the parent
// definition when this one is an override.
type Action func(ctx context.Context, args Args, rt Runtime, super *Super) (cty.Value, error)

// ParamDef declares a single task parameter.
type ParamDef struct {
	Name        string
	Type        cty.Type
	Description string

	// Optional marks the parameter as defaultable. Default is consulted
	// only when Optional is true; a cty.NilVal default means the resolved
	// map simply omits the key.
	Optional bool
	Default  cty.Value
}
