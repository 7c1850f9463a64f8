package task

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/rterr"
)

// Super is the capability, handed to a task action, to invoke the parent
// definition it overrides. Defined is an explicit, inspectable flag so an
// action can branch on whether delegation is meaningful before calling.
type Super struct {
	// Defined reports whether a parent implementation exists.
	Defined bool

	task string
	call func(ctx context.Context, args Args) (cty.Value, error)
}

// NewSuper builds a defined super capability for the named task. The call
// closure is supplied by the runtime and executes the parent definition.
func NewSuper(taskName string, call func(ctx context.Context, args Args) (cty.Value, error)) *Super {
	return &Super{Defined: true, task: taskName, call: call}
}

// UndefinedSuper builds the capability handed to a base (non-overriding)
// definition: calling it always fails.
func UndefinedSuper(taskName string) *Super {
	return &Super{task: taskName}
}

// Call invokes the parent definition. A nil args map reuses the current
// level's validated arguments; a non-nil map replaces them as-is, without
// re-validation.
func (s *Super) Call(ctx context.Context, args Args) (cty.Value, error) {
	if !s.Defined {
		return cty.NilVal, rterr.New(rterr.KindNoParentImpl, "task %q has no parent implementation to call", s.task).
			WithDetail("task", s.task)
	}
	return s.call(ctx, args)
}
