package task

import (
	"sort"

	"github.com/vk/forgerun/internal/rterr"
)

// ID indexes a definition inside the registry's arena.
type ID int

// noParent marks a base definition in the arena.
const noParent ID = -1

// Definition is an immutable, registered task definition. An overriding
// definition keeps the id of the definition it replaced.
type Definition struct {
	id          ID
	name        string
	description string
	params      []ParamDef
	positional  []ParamDef
	action      Action
	parent      ID
}

// ID returns the definition's arena index.
func (d *Definition) ID() ID { return d.id }

// Name returns the task name.
func (d *Definition) Name() string { return d.name }

// Description returns the task description.
func (d *Definition) Description() string { return d.description }

// Params returns the named parameter definitions.
func (d *Definition) Params() []ParamDef { return d.params }

// PositionalParams returns the positional parameter definitions in binding
// order.
func (d *Definition) PositionalParams() []ParamDef { return d.positional }

// DeclaredParams returns every declared parameter, named first, then
// positional, each group in declaration order.
func (d *Definition) DeclaredParams() []ParamDef {
	out := make([]ParamDef, 0, len(d.params)+len(d.positional))
	out = append(out, d.params...)
	out = append(out, d.positional...)
	return out
}

// Action returns the task's action.
func (d *Definition) Action() Action { return d.action }

// Overrides reports whether this definition overrides a previous one.
func (d *Definition) Overrides() bool { return d.parent != noParent }

// Parent returns the arena id of the overridden definition. Only meaningful
// when Overrides is true.
func (d *Definition) Parent() ID { return d.parent }

// Registry stores task definitions in an append-only arena and maps each
// task name to its most recent definition.
type Registry struct {
	defs  []*Definition
	names map[string]ID
}

// NewRegistry creates an empty task registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]ID)}
}

// Define registers a new base task. The name must not already exist.
func (r *Registry) Define(t *Task) (ID, error) {
	if _, exists := r.names[t.name]; exists {
		return 0, rterr.New(rterr.KindDuplicateTask, "task %q is already defined; use Override to redefine it", t.name).
			WithDetail("task", t.name)
	}
	return r.append(t, noParent), nil
}

// Override registers a new definition layered on top of the existing one
// with the same name. The new definition becomes the one Run resolves, and
// its parent id points at the definition that existed at registration time,
// so the chain is acyclic by construction.
//
// An override that declares no parameters of its own inherits the parameter
// definitions of the definition it replaces.
func (r *Registry) Override(t *Task) (ID, error) {
	parentID, exists := r.names[t.name]
	if !exists {
		return 0, rterr.New(rterr.KindUnknownOverride, "cannot override task %q: it was never defined", t.name).
			WithDetail("task", t.name)
	}
	if len(t.params) == 0 && len(t.positional) == 0 {
		parent := r.defs[parentID]
		t.params = parent.params
		t.positional = parent.positional
	}
	return r.append(t, parentID), nil
}

func (r *Registry) append(t *Task, parent ID) ID {
	id := ID(len(r.defs))
	def := &Definition{
		id:          id,
		name:        t.name,
		description: t.description,
		params:      t.params,
		positional:  t.positional,
		action:      t.action,
		parent:      parent,
	}
	r.defs = append(r.defs, def)
	r.names[t.name] = id
	return id
}

// Lookup returns the most recent definition for the given task name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	id, ok := r.names[name]
	if !ok {
		return nil, false
	}
	return r.defs[id], true
}

// ByID returns the definition at the given arena index.
func (r *Registry) ByID(id ID) *Definition {
	return r.defs[id]
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of definitions in the arena, including overridden
// ones.
func (r *Registry) Len() int {
	return len(r.defs)
}

// ChainDepth returns the length of the override chain for the given name,
// or zero for an unknown task.
func (r *Registry) ChainDepth(name string) int {
	id, ok := r.names[name]
	if !ok {
		return 0
	}
	depth := 0
	for {
		depth++
		def := r.defs[id]
		if !def.Overrides() {
			return depth
		}
		id = def.parent
	}
}
