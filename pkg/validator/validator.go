// Package validator registers custom request validation rules on gin's
// binding engine.
package validator

import (
	"strings"

	"github.com/gin-gonic/gin/binding"
	validatorV10 "github.com/go-playground/validator/v10"
)

// RegisterCustom installs the project's extra validation rules. Call once
// at startup, before the first request is bound.
func RegisterCustom() {
	v, ok := binding.Validator.Engine().(*validatorV10.Validate)
	if !ok {
		return
	}

	// notblank rejects strings that are empty after trimming whitespace;
	// "required" alone accepts a title of spaces.
	_ = v.RegisterValidation("notblank", func(fl validatorV10.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}
