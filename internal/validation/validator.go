// Package validation checks incoming resource models against the bounds
// declared in their binding tags and turns failures into domain errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	domainerrors "github.com/mrlokans/bookclub/internal/errors"
	"github.com/mrlokans/bookclub/internal/models"
)

// Validator wraps go-playground/validator with domain error conversion.
// It satisfies gin's binding.StructValidator so ShouldBindJSON uses it.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reads "binding" tags and knows the domain tags.
func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "handle", validHandle)
	mustRegister(v, "maxbytes", maxBytes)

	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

var installOnce sync.Once

// Install makes New the validator gin uses when binding request bodies.
func Install() {
	installOnce.Do(func() {
		binding.Validator = New()
	})
}

// validHandle rejects the reserved label and keys with surrounding whitespace.
func validHandle(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == strings.TrimSpace(s) && !strings.EqualFold(s, models.ReservedKey)
}

// maxBytes bounds the encoded length of a string, where max counts runes.
// bcrypt reads at most 72 bytes of a password.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// ValidateStruct implements binding.StructValidator. Anything that is not a
// struct or a pointer to one passes through unchecked.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil
	}
	return v.Validate(obj)
}

// Engine implements binding.StructValidator.
func (v *Validator) Engine() any {
	return v.v
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return domainerrors.Validation("Invalid document").WithCause(err)
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("Document failed validation", fieldErrors)
}

// Messages flattens the field details of a validation error into
// "field message" lines, sorted by field. It returns nil for other errors.
func Messages(err error) []string {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		return nil
	}
	fields, ok := domainErr.Details.(map[string]string)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, name+" "+fields[name])
	}
	return messages
}

func friendlyMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "is required"
	case "handle":
		return fmt.Sprintf("must not be %q or have surrounding whitespace", models.ReservedKey)
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return "must be at least " + e.Param()
	case "max":
		if isString {
			return fmt.Sprintf("must not exceed %s characters", e.Param())
		}
		return "must not exceed " + e.Param()
	case "maxbytes":
		return fmt.Sprintf("must not exceed %s bytes", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
