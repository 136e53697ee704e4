package events

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks a draft before it reaches the store.
func Validate(d Draft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fieldName(fe) + " is required"
	case "oneof":
		return fieldName(fe) + " must be one of: " + fe.Param()
	case "gtefield":
		return "end_ts must not be before start_ts"
	case "max":
		return fieldName(fe) + " is too long"
	}
	return fieldName(fe) + " is invalid"
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Start":
		return "start_ts"
	case "End":
		return "end_ts"
	}
	return strings.ToLower(fe.Field())
}
