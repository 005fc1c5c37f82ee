package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"catalog/internal/models"
)

// Violation is a single failed rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every violated rule of a payload, in field order.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	return e.First()
}

// First returns the message of the first violation.
func (e *Error) First() string {
	if len(e.Violations) == 0 {
		return "Validation error"
	}
	return e.Violations[0].Message
}

// Joined returns all messages in one line, prefixed with "Validation error: ".
func (e *Error) Joined() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return "Validation error: " + strings.Join(msgs, ", ")
}

// Validator normalizes and validates request payloads.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator reporting JSON field names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	})
	// Present optional strings must keep some text once trimmed.
	_ = v.RegisterValidation("nonempty", func(fl validator.FieldLevel) bool {
		return fl.Field().String() != ""
	})
	return &Validator{validate: v}
}

// Category trims the string fields of in and validates it.
func (v *Validator) Category(in *models.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimPtr(in.Description)
	return v.check(in)
}

// Product trims the string fields of in and validates it, variants included.
func (v *Validator) Product(in *models.ProductInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = trimPtr(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	for i := range in.Variants {
		in.Variants[i].Color = trimPtr(in.Variants[i].Color)
		in.Variants[i].Size = trimPtr(in.Variants[i].Size)
	}
	return v.check(in)
}

func (v *Validator) check(in interface{}) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Error{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fieldPath(fe.Namespace())
		out.Violations = append(out.Violations, Violation{Field: field, Message: message(field, fe)})
	}
	return out
}

// fieldPath drops the root struct name: "ProductInput.variants[0].price" -> "variants[0].price".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "gt":
		if fe.Param() == "0" {
			return fmt.Sprintf("%q must be a positive number", field)
		}
		return fmt.Sprintf("%q must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%q length must be %s characters long", field, fe.Param())
	case "nonempty":
		return fmt.Sprintf("%q is not allowed to be empty", field)
	case "objectid":
		return fmt.Sprintf("%q must only contain hexadecimal characters", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
