package validator

import (
	"fmt"

	"go-stock-ledger/internal/model"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// Supplier must be one of the known vendors (OTHER included)
	validate.RegisterValidation("supplier", func(fl validator.FieldLevel) bool {
		if s, ok := fl.Field().Interface().(model.Supplier); ok {
			return s.Valid()
		}
		return false
	})
	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		if c, ok := fl.Field().Interface().(model.Category); ok {
			return c.Valid()
		}
		return false
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// FirstError renders the first failure as a message, or nil when data is valid.
func FirstError(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	e := errs[0]
	if e.Value != "" {
		return fmt.Errorf("validation failed: field '%s' failed on tag '%s=%s'", e.FailedField, e.Tag, e.Value)
	}
	return fmt.Errorf("validation failed: field '%s' failed on tag '%s'", e.FailedField, e.Tag)
}
