package task

import "github.com/zclconf/go-cty/cty"

// Task is the builder used to declare a task before registering it. It
// accumulates parameter definitions in declaration order and is consumed by
// Registry.Define or Registry.Override.
type Task struct {
	name        string
	description string
	params      []ParamDef
	positional  []ParamDef
	action      Action

	lastPositional bool
}

// New starts declaring a task with the given name.
func New(name string) *Task {
	return &Task{name: name}
}

// Description attaches a human-readable description.
func (t *Task) Description(text string) *Task {
	t.description = text
	return t
}

// Param declares a mandatory named parameter.
func (t *Task) Param(name string, ty cty.Type) *Task {
	t.params = append(t.params, ParamDef{Name: name, Type: ty})
	t.lastPositional = false
	return t
}

// OptionalParam declares an optional named parameter with a default value.
// Pass cty.NilVal to default to "absent".
func (t *Task) OptionalParam(name string, ty cty.Type, def cty.Value) *Task {
	t.params = append(t.params, ParamDef{Name: name, Type: ty, Optional: true, Default: def})
	t.lastPositional = false
	return t
}

// PositionalParam declares a mandatory positional parameter. Positional
// order follows declaration order.
func (t *Task) PositionalParam(name string, ty cty.Type) *Task {
	t.positional = append(t.positional, ParamDef{Name: name, Type: ty})
	t.lastPositional = true
	return t
}

// OptionalPositionalParam declares an optional positional parameter with a
// default value.
func (t *Task) OptionalPositionalParam(name string, ty cty.Type, def cty.Value) *Task {
	t.positional = append(t.positional, ParamDef{Name: name, Type: ty, Optional: true, Default: def})
	t.lastPositional = true
	return t
}

// ParamDescription attaches a description to the most recently declared
// parameter.
func (t *Task) ParamDescription(text string) *Task {
	if t.lastPositional {
		if n := len(t.positional); n > 0 {
			t.positional[n-1].Description = text
		}
		return t
	}
	if n := len(t.params); n > 0 {
		t.params[n-1].Description = text
	}
	return t
}

// SetAction sets the work the task performs.
func (t *Task) SetAction(fn Action) *Task {
	t.action = fn
	return t
}
