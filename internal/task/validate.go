package task

import (
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/forgerun/internal/rterr"
)

// Validator checks a supplied argument value against a parameter's declared
// type and returns the value to use, normalized to that type. The runtime
// consumes validators through this contract only.
type Validator interface {
	Validate(param string, value cty.Value, want cty.Type) (cty.Value, error)
}

// ctyValidator is the default validator: a value conforms when cty can
// convert it to the declared type.
type ctyValidator struct{}

// DefaultValidator returns the cty conversion based validator.
func DefaultValidator() Validator {
	return ctyValidator{}
}

// Validate implements Validator.
func (ctyValidator) Validate(param string, value cty.Value, want cty.Type) (cty.Value, error) {
	if want == cty.NilType || want.Equals(cty.DynamicPseudoType) {
		return value, nil
	}
	converted, err := convert.Convert(value, want)
	if err != nil {
		return cty.NilVal, rterr.New(rterr.KindInvalidArgumentType,
			"invalid value %s for parameter %q: expected %s", value.GoString(), param, want.FriendlyName()).
			WithDetail("name", param).
			WithDetail("value", value).
			WithDetail("type", want.FriendlyName()).
			WithCause(err)
	}
	return converted, nil
}
