package validator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"anoa.com/bloodlink/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	bloodGroups = map[string]bool{"A": true, "B": true, "AB": true, "O": true}
	rhesusSigns = map[string]bool{"+": true, "-": true}

	registerOnce sync.Once
)

// RegisterCustomTags adds the domain tags to gin's binding validator.
func RegisterCustomTags() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
			return bloodGroups[fl.Field().String()]
		})
		_ = v.RegisterValidation("rhesus", func(fl validator.FieldLevel) bool {
			return rhesusSigns[fl.Field().String()]
		})
	})
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, getFieldName(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "bloodgroup":
		return fmt.Sprintf("%s must be one of A, B, AB, O", field)
	case "rhesus":
		return fmt.Sprintf("%s must be + or -", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":            "Name",
		"Email":           "Email",
		"Password":        "Password",
		"ConfirmPassword": "Password confirmation",
		"Role":            "Role",
		"BloodGroup":      "Blood group",
		"Rhesus":          "Rhesus",
		"UrgencyLevel":    "Urgency level",
		"BirthDate":       "Birth date",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}

// ValidateStruct runs the binding rules on v outside of a gin request, so
// services can repeat the checks their handlers already made.
func ValidateStruct(v any) error {
	RegisterCustomTags()
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return apperror.New(http.StatusBadRequest, FormatValidationError(err), apperror.ErrInvalidInput)
	}
	return nil
}
