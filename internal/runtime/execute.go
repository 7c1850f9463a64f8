package runtime

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/ctxlog"
	"github.com/vk/forgerun/internal/task"
)

// execute runs one level of a task's override chain.
//
// Per level it builds the super capability (a real delegation closure for an
// override, a failing one for a base definition), installs it into the
// ambient scope's reserved slot, injects the environment's members, and
// invokes the action. Restoration runs on every exit path: injected members
// first, the super slot second, so nested and sequential executions never
// leak ambient state into each other.
func (e *Environment) execute(ctx context.Context, def *task.Definition, args task.Args) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx).With("task", def.Name())

	var super *task.Super
	if def.Overrides() {
		parent := e.tasks.ByID(def.Parent())
		super = task.NewSuper(def.Name(), func(ctx context.Context, replacement task.Args) (cty.Value, error) {
			if replacement == nil {
				replacement = args
			}
			logger.Debug("Delegating to parent definition.", "parent_id", parent.ID())
			return e.execute(ctx, parent, replacement)
		})
	} else {
		super = task.UndefinedSuper(def.Name())
	}

	restoreSlot := setAmbient(SuperSlotName, super)
	defer restoreSlot()
	restoreGlobals := e.InjectToGlobal()
	defer restoreGlobals()

	logger.Debug("Executing task definition.", "definition_id", def.ID(), "overrides", def.Overrides())
	return def.Action()(ctx, args, e, super)
}
