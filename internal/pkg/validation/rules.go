// Package validation registers the project's custom binding rules on gin's
// validator engine.
package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Tag names usable in `binding:"..."` struct tags
const (
	// TagNotBlank rejects strings that are empty after trimming whitespace
	TagNotBlank = "notblank"
)

// NotBlank reports whether the field holds a string with non-space content.
// Non-string fields always pass.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind().String() != "string" {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// RegisterRules adds the custom rules to v
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation(TagNotBlank, NotBlank); err != nil {
		return fmt.Errorf("register %s: %w", TagNotBlank, err)
	}
	return nil
}

// Register installs the custom rules on gin's default validator
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}
