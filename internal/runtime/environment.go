// Package runtime implements the task runtime environment: the façade that
// resolves a task name to its current definition, validates and defaults
// the supplied arguments, and executes the override chain with a working
// "call the parent implementation" capability at every level.
package runtime

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/config"
	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/provider"
	"github.com/vk/forgerun/internal/rterr"
	"github.com/vk/forgerun/internal/task"
)

// RunArgs is the immutable snapshot of run-level arguments the environment
// is constructed with.
type RunArgs struct {
	// Network optionally overrides the configuration's default network.
	Network string
}

// Hook runs against the environment during construction, after the network
// has been selected and the provider handle built. Hooks may decorate the
// environment (see Set) but must not replace it; a hook error aborts
// construction.
type Hook func(env *Environment) error

// Environment is the process-wide execution context for task runs. Create
// one per run with New; it is not safe to issue concurrent Run calls on the
// same process because runs share the ambient scope.
type Environment struct {
	cfg       *config.Config
	runArgs   RunArgs
	tasks     *task.Registry
	network   *provider.Network
	validator task.Validator

	extras     map[string]any
	extraNames []string
}

// New constructs an environment from a resolved configuration, run-level
// arguments, a task registry and an ordered list of extension hooks.
//
// The requested network (run-level override, else the configured default)
// must exist in the configuration's network table; that lookup is the only
// validation performed eagerly. Provider construction is deferred behind a
// lazy, memoized handle and delegated to the given factory.
func New(cfg *config.Config, runArgs RunArgs, reg *task.Registry, hooks []Hook, factory provider.Factory) (*Environment, error) {
	name := runArgs.Network
	if name == "" {
		name = cfg.DefaultNetwork
	}
	netCfg, ok := cfg.Networks[name]
	if !ok {
		return nil, rterr.New(rterr.KindNetworkNotFound, "network %q is not present in the configuration", name).
			WithDetail("network", name)
	}

	handle := provider.NewLazy(func() (provider.Provider, error) {
		return factory(name, netCfg, cfg.Solidity, cfg.Paths)
	})

	env := &Environment{
		cfg:       cfg,
		runArgs:   runArgs,
		tasks:     reg,
		network:   &provider.Network{Name: name, Config: netCfg, Handle: handle},
		validator: task.DefaultValidator(),
		extras:    make(map[string]any),
	}

	for _, hook := range hooks {
		if err := hook(env); err != nil {
			return nil, err
		}
	}
	return env, nil
}

// Config returns the resolved project configuration.
func (e *Environment) Config() *config.Config { return e.cfg }

// RunArguments returns the run-level argument snapshot.
func (e *Environment) RunArguments() RunArgs { return e.runArgs }

// Network returns the selected network descriptor. Its Handle field is the
// same object returned by ProviderHandle.
func (e *Environment) Network() *provider.Network { return e.network }

// ProviderHandle returns the lazy provider handle without resolving it.
func (e *Environment) ProviderHandle() *provider.Lazy { return e.network.Handle }

// Provider resolves the lazy provider handle, constructing the provider on
// first call.
func (e *Environment) Provider() (provider.Provider, error) { return e.network.Handle.Get() }

// Registry returns the task registry.
func (e *Environment) Registry() *task.Registry { return e.tasks }

// Set attaches an extension-provided member to the environment. Attached
// members participate in global injection alongside the built-in ones.
func (e *Environment) Set(name string, value any) {
	if _, exists := e.extras[name]; !exists {
		e.extraNames = append(e.extraNames, name)
	}
	e.extras[name] = value
}

// Value returns an extension-attached member by name.
func (e *Environment) Value(name string) (any, bool) {
	v, ok := e.extras[name]
	return v, ok
}

// SetValidator replaces the argument validator. Intended for extension
// hooks; the default validates by cty type conversion.
func (e *Environment) SetValidator(v task.Validator) {
	e.validator = v
}

// Run resolves the named task, validates and defaults the raw arguments
// once, and executes the task's override chain from its most recent
// definition. The raw map is not mutated.
func (e *Environment) Run(ctx context.Context, name string, raw task.Args) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("task", name)

	def, ok := e.tasks.Lookup(name)
	if !ok {
		return cty.NilVal, rterr.New(rterr.KindUnknownTask, "task %q is not registered", name).
			WithDetail("task", name)
	}

	args, err := resolveArguments(def, raw, e.validator)
	if err != nil {
		return cty.NilVal, err
	}

	logger.Info("▶️ Running task", "network", e.network.Name, "chain_depth", e.tasks.ChainDepth(name))
	result, err := e.execute(ctx, def, args)
	if err != nil {
		return cty.NilVal, err
	}
	logger.Info("✅ Task finished")
	return result, nil
}

var _ task.Runtime = (*Environment)(nil)
