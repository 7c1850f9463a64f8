package runtime

import (
	"context"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/task"
)

// The ambient scope is an explicit, process-wide map that stands in for
// mutable global bindings. Task actions never need it (everything reaches
// them as explicit arguments); it exists for interactive front-ends such as
// a console, which opt in via InjectToGlobal and read through Ambient.
var (
	ambientMu sync.Mutex
	ambient   = make(map[string]any)
)

// SuperSlotName is the reserved ambient slot the executor installs the
// current super capability under.
const SuperSlotName = "runSuper"

// Ambient returns the current value bound to name in the ambient scope.
func Ambient(name string) (any, bool) {
	ambientMu.Lock()
	defer ambientMu.Unlock()
	v, ok := ambient[name]
	return v, ok
}

// prior records an ambient slot's state before an overwrite, including
// whether the slot existed at all.
type prior struct {
	value   any
	present bool
}

// setAmbient binds name in the ambient scope and returns a restore function
// that writes back the exact prior state. Restore runs at most once.
func setAmbient(name string, value any) (restore func()) {
	ambientMu.Lock()
	defer ambientMu.Unlock()
	was := prior{}
	was.value, was.present = ambient[name]
	ambient[name] = value

	var once sync.Once
	return func() {
		once.Do(func() {
			ambientMu.Lock()
			defer ambientMu.Unlock()
			if was.present {
				ambient[name] = was.value
			} else {
				delete(ambient, name)
			}
		})
	}
}

// exposedMembers is the statically-declared list of environment members that
// participate in global injection. The injected/restored set is a fixed
// contract, not a runtime enumeration of the struct.
var exposedMembers = []string{
	"config",
	"network",
	"provider",
	"tasks",
	"run",
	"injectToGlobal",
}

// DefaultExcludedGlobals blocks the injector entry point itself from being
// projected into ambient scope, preventing accidental recursive
// self-injection.
var DefaultExcludedGlobals = []string{"injectToGlobal"}

// memberNames returns the injectable member names: the static list followed
// by extension-attached extras in attachment order. Recomputed on every
// call; restore relies on that rather than a cached snapshot.
func (e *Environment) memberNames() []string {
	out := make([]string, 0, len(exposedMembers)+len(e.extraNames))
	out = append(out, exposedMembers...)
	out = append(out, e.extraNames...)
	return out
}

// member returns the value injected for a given member name.
func (e *Environment) member(name string) any {
	switch name {
	case "config":
		return e.cfg
	case "network":
		return e.network
	case "provider":
		return e.network.Handle
	case "tasks":
		return e.tasks
	case "run":
		return func(ctx context.Context, taskName string, raw task.Args) (cty.Value, error) {
			return e.Run(ctx, taskName, raw)
		}
	case "injectToGlobal":
		return func(exclude ...string) func() {
			return e.InjectToGlobal(exclude...)
		}
	default:
		return e.extras[name]
	}
}

// InjectToGlobal projects the environment's members into the ambient scope
// and returns a restore function that writes back the prior bindings.
//
// With no arguments the default exclusion list applies; explicit arguments
// replace it entirely. The restore function recomputes the member set from
// the environment, applies the same exclusions, and runs exactly once no
// matter how many times it is called.
func (e *Environment) InjectToGlobal(exclude ...string) (restore func()) {
	if len(exclude) == 0 {
		exclude = DefaultExcludedGlobals
	}
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}

	ambientMu.Lock()
	saved := make(map[string]prior)
	for _, name := range e.memberNames() {
		if _, skip := excluded[name]; skip {
			continue
		}
		was := prior{}
		was.value, was.present = ambient[name]
		saved[name] = was
		ambient[name] = e.member(name)
	}
	ambientMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ambientMu.Lock()
			defer ambientMu.Unlock()
			for _, name := range e.memberNames() {
				if _, skip := excluded[name]; skip {
					continue
				}
				was, ok := saved[name]
				if ok && was.present {
					ambient[name] = was.value
					continue
				}
				// Absent before injection, or attached after it:
				// either way the slot goes back to empty.
				delete(ambient, name)
			}
		})
	}
}
