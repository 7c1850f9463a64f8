// Package tasklist provides the built-in help task that renders the set of
// registered tasks and their parameters.
package tasklist

import (
	"context"
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/rterr"
	"github.com/vk/forgerun/internal/task"
)

// Extension implements task.Extension.
type Extension struct{}

// Register registers the help task.
func (Extension) Register(r *task.Registry) error {
	_, err := r.Define(task.New("help").
		Description("List registered tasks, or describe a single task.").
		OptionalPositionalParam("task", cty.String, cty.NilVal).
		ParamDescription("Task to describe; omit to list all tasks.").
		SetAction(onHelp))
	return err
}

func onHelp(ctx context.Context, args task.Args, rt task.Runtime, super *task.Super) (cty.Value, error) {
	reg := rt.Registry()

	if name, ok := args["task"]; ok {
		def, found := reg.Lookup(name.AsString())
		if !found {
			return cty.NilVal, rterr.New(rterr.KindUnknownTask, "task %q is not registered", name.AsString()).
				WithDetail("task", name.AsString())
		}
		return cty.StringVal(describe(def, reg.ChainDepth(def.Name()))), nil
	}

	var b strings.Builder
	b.WriteString("Available tasks:\n")
	for _, name := range reg.Names() {
		def, _ := reg.Lookup(name)
		fmt.Fprintf(&b, "  %-16s %s\n", name, def.Description())
	}
	return cty.StringVal(b.String()), nil
}

func describe(def *task.Definition, depth int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  %s\n", def.Name(), def.Description())
	if depth > 1 {
		fmt.Fprintf(&b, "  (overridden %d time(s))\n", depth-1)
	}
	writeParams := func(heading string, params []task.ParamDef) {
		if len(params) == 0 {
			return
		}
		fmt.Fprintf(&b, "  %s:\n", heading)
		for _, p := range params {
			req := "required"
			if p.Optional {
				req = "optional"
			}
			fmt.Fprintf(&b, "    %-12s %s, %s", p.Name, p.Type.FriendlyName(), req)
			if p.Description != "" {
				fmt.Fprintf(&b, ": %s", p.Description)
			}
			b.WriteString("\n")
		}
	}
	writeParams("Parameters", def.Params())
	writeParams("Positional", def.PositionalParams())
	return b.String()
}
