package runtime

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/forgerun/internal/rterr"
	"github.com/vk/forgerun/internal/task"
)

// resolveArguments maps the raw argument map onto the definition's declared
// parameters: supplied values are validated, absent optional ones take their
// declared default, and absent mandatory ones are errors.
//
// Every declared parameter is evaluated even after a failure, so the
// resolver could report all errors at once; the surfaced failure is the
// first one in declaration order, named parameters before positional.
func resolveArguments(def *task.Definition, raw task.Args, v task.Validator) (task.Args, error) {
	var firstErr error
	resolved := make(task.Args)

	for _, p := range def.DeclaredParams() {
		value, supplied := raw[p.Name]
		switch {
		case !supplied && p.Optional:
			resolved[p.Name] = p.Default
		case !supplied:
			if firstErr == nil {
				firstErr = rterr.New(rterr.KindMissingArgument, "task %q is missing required argument %q", def.Name(), p.Name).
					WithDetail("task", def.Name()).
					WithDetail("param", p.Name)
			}
		default:
			normalized, err := v.Validate(p.Name, value, p.Type)
			if err != nil {
				// Keep the validator's own canonical error; wrap
				// anything else so callers always see the same kind.
				if !rterr.IsKind(err, rterr.KindInvalidArgumentType) {
					err = rterr.New(rterr.KindInvalidArgumentType,
						"invalid value for parameter %q of task %q", p.Name, def.Name()).
						WithDetail("name", p.Name).
						WithDetail("value", value).
						WithDetail("type", p.Type.FriendlyName()).
						WithCause(err)
				}
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			resolved[p.Name] = normalized
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	// Undeclared keys pass through verbatim; resolved values for declared
	// parameters overlay them. A parameter resolved to "absent" does not
	// appear as an explicit key.
	merged := make(task.Args, len(raw)+len(resolved))
	for k, val := range raw {
		merged[k] = val
	}
	for k, val := range resolved {
		if val == cty.NilVal {
			delete(merged, k)
			continue
		}
		merged[k] = val
	}
	return merged, nil
}
