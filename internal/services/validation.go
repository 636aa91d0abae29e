package services

import (
	"embed"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/BradenHooton/jobboard/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/unicode/norm"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var validate = newValidator()

// newValidator reports fields by their JSON name
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// ValidateStruct runs the struct's validate tags and converts the first failure
// into a field-level *models.ValidationError. Handlers and services share it.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return models.NewValidationError(fe.Field(), describeFieldError(fe))
	}
	return models.NewValidationError("", err.Error())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "ne":
		return fmt.Sprintf("must not be %s", fe.Param())
	case "uuid":
		return "must be a valid id"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// normalizeText applies NFC and trims surrounding whitespace, so visually identical
// input has a single stored form and a single length.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// ApplicationDataValidator checks application form snapshots against an embedded JSON schema
type ApplicationDataValidator struct {
	schema *gojsonschema.Schema
}

// NewApplicationDataValidator compiles the embedded application data schema
func NewApplicationDataValidator() (*ApplicationDataValidator, error) {
	raw, err := schemaFS.ReadFile("schemas/application_data.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read application data schema: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile application data schema: %w", err)
	}

	return &ApplicationDataValidator{schema: schema}, nil
}

// Validate returns a ValidationError naming the first offending field
func (v *ApplicationDataValidator) Validate(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	res, err := v.schema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return models.NewValidationError("applicationData", "must be a JSON object")
	}
	if res.Valid() {
		return nil
	}

	first := res.Errors()[0]
	field := "applicationData"
	if f := first.Field(); f != "" && f != "(root)" {
		field += "." + f
	}
	return models.NewValidationError(field, first.Description())
}
