package utils

import (
	"reflect"
	"strings"

	"github.com/examforge/exam-link-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground validation with the domain's custom tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return &Validator{validate: validate}
}

// Struct validates a request struct against its validate tags.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Engine exposes the underlying validator for handler-level bindings.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// ValidateQuestionType accepts any raw type string that normalizes to a
// canonical question type, so requests may still carry the legacy aliases.
func ValidateQuestionType(fl validator.FieldLevel) bool {
	_, err := models.NormalizeQuestionType(fl.Field().String())
	return err == nil
}

// ValidateDurationUnit restricts publish durations to minutes or hours.
func ValidateDurationUnit(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "minutes", "hours":
		return true
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)
	validate.RegisterValidation("duration_unit", ValidateDurationUnit)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
