package planner

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors against JSON field names so API error details match the
	// wire format rather than Go struct fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors maps JSON field names to human-readable validation messages.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for field, msg := range fe {
		sb.WriteString(fmt.Sprintf(" %s: %s;", field, msg))
	}
	return sb.String()
}

// fieldErrorsFrom converts validator errors into a FieldErrors map.
func fieldErrorsFrom(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fe := make(FieldErrors, len(verrs))
	for _, e := range verrs {
		fe[e.Field()] = messageFor(e)
	}
	return fe
}

func messageFor(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return "Please select a valid option"
	case "eq":
		if e.Field() == "consentGiven" {
			return "Please accept the privacy notice to continue"
		}
		return fmt.Sprintf("Must equal %s", e.Param())
	case "min":
		return fmt.Sprintf("Must have at least %s", e.Param())
	case "max":
		return fmt.Sprintf("Must not exceed %s", e.Param())
	default:
		return fmt.Sprintf("Failed %s validation", e.Tag())
	}
}

// Validate checks the qualification input and returns FieldErrors on failure.
func (q *QualificationData) Validate() error {
	return fieldErrorsFrom(validate.Struct(q))
}

// Validate checks the diagnostic input, including the constraint that pain
// points span two or three distinct areas.
func (d *DiagnosticData) Validate() error {
	if err := fieldErrorsFrom(validate.Struct(d)); err != nil {
		return err
	}
	areas := make(map[string]bool)
	for _, p := range d.PainPoints {
		areas[p.Area] = true
	}
	if len(areas) < 2 || len(areas) > 3 {
		return FieldErrors{"painPoints": "Please select two or three areas"}
	}
	return nil
}

// Validate checks a single sizing entry.
func (s *SizingEntry) Validate() error {
	return fieldErrorsFrom(validate.Struct(s))
}

// ValidateSizing checks the full set of sizing entries: exactly three, each valid.
func ValidateSizing(entries []SizingEntry) error {
	if len(entries) != 3 {
		return FieldErrors{"sizing": "Exactly three sized workflows are required"}
	}
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
