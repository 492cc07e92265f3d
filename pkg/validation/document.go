package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance with portflow-specific rules
// registered. Persisted flow documents are checked against struct tags
// before any node is instantiated.
var Validate *validator.Validate

var (
	nodeIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	typeTagPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

func init() {
	Validate = validator.New()

	Validate.RegisterValidation("node_id", validateNodeID)
	Validate.RegisterValidation("type_tag", validateTypeTag)
	Validate.RegisterValidation("port_name", validatePortName)

	// Use xml tags for field names in error messages.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("xml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateStruct validates any tagged struct and converts failures into
// FieldErrors.
func ValidateStruct(s any) error {
	if err := Validate.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) FieldErrors {
	var out FieldErrors
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out = append(out, FieldError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Message: errorMessage(fe),
			})
		}
	}
	return out
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "node_id":
		return "must be a valid node identifier (alphanumeric, underscore, hyphen)"
	case "type_tag":
		return "must be a valid node type tag (lowercase alphanumeric, underscore)"
	case "port_name":
		return "must be a valid port name"
	case "dive":
		return "invalid collection element"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// validateNodeID validates node identifier format.
func validateNodeID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return id != "" && len(id) <= 100 && nodeIDPattern.MatchString(id)
}

// validateTypeTag validates registry type tags.
func validateTypeTag(fl validator.FieldLevel) bool {
	tag := fl.Field().String()
	return tag != "" && len(tag) <= 50 && typeTagPattern.MatchString(tag)
}

// validatePortName validates port names; same alphabet as node IDs.
func validatePortName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && len(name) <= 100 && nodeIDPattern.MatchString(name)
}
