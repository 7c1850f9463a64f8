package app

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/task"
)

// Run executes the configured task and prints its result, if any, to the
// application's output writer.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "task", a.cfg.TaskName)

	raw, err := a.bindArguments()
	if err != nil {
		return err
	}

	result, err := a.env.Run(ctx, a.cfg.TaskName, raw)
	if err != nil {
		return fmt.Errorf("task %q failed: %w", a.cfg.TaskName, err)
	}

	if result != cty.NilVal && !result.IsNull() {
		rendered, err := ctyjson.Marshal(result, result.Type())
		if err != nil {
			return fmt.Errorf("failed to render task result: %w", err)
		}
		fmt.Fprintln(a.outW, string(rendered))
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// bindArguments merges the command line's bare positional values into the
// raw argument map under the task's declared positional parameter names.
// Binding is by command-line order; surplus values are an error. Name
// resolution and all validation stay with the runtime.
func (a *App) bindArguments() (task.Args, error) {
	raw := make(task.Args, len(a.cfg.TaskArgs)+len(a.cfg.PositionalArgs))
	for k, v := range a.cfg.TaskArgs {
		raw[k] = v
	}

	if len(a.cfg.PositionalArgs) == 0 {
		return raw, nil
	}

	def, ok := a.env.Registry().Lookup(a.cfg.TaskName)
	if !ok {
		// Let env.Run surface the canonical unknown-task error.
		return raw, nil
	}
	params := def.PositionalParams()
	if len(a.cfg.PositionalArgs) > len(params) {
		return nil, fmt.Errorf("task %q takes at most %d positional arguments, got %d",
			a.cfg.TaskName, len(params), len(a.cfg.PositionalArgs))
	}
	for i, val := range a.cfg.PositionalArgs {
		name := params[i].Name
		if _, dup := raw[name]; dup {
			return nil, fmt.Errorf("argument %q of task %q supplied both positionally and by name", name, a.cfg.TaskName)
		}
		raw[name] = val
	}
	return raw, nil
}
