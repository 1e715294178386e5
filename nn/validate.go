// SPDX-License-Identifier: MIT

package nn

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/katalvlaran/graphnn/activation"
)

// configValidate checks layer Config structs. Initialised in init() with the
// custom rules below.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New(validator.WithRequiredStructEnabled())
	_ = configValidate.RegisterValidation("activation", validateActivation)
	_ = configValidate.RegisterValidation("initializer", validateInitializer)
}

// validateActivation accepts an empty name (layer default) or a known kind.
func validateActivation(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	name := fl.Field().String()

	return name == "" || activation.Kind(name).Valid()
}

// validateInitializer accepts an empty name (layer default) or a known scheme.
func validateInitializer(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	name := fl.Field().String()

	return name == "" || Initializer(name).Valid()
}

// Validate checks cfg's `validate` tags and wraps any failure in
// ErrInvalidConfig, naming the first failing field and rule.
func Validate(cfg any) error {
	err := configValidate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Param() != "" {
			return fmt.Errorf("%w: %s: rule %s=%s, got %v", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
		}

		return fmt.Errorf("%w: %s: rule %s, got %v", ErrInvalidConfig, fe.Namespace(), fe.Tag(), fe.Value())
	}

	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

// Invalid formats a configuration error outside struct tags.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Resolve returns the activation function for k, falling back to def.
func Resolve(k, def activation.Kind) (activation.Func, error) {
	f, err := k.Or(def).Func()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return f, nil
}
