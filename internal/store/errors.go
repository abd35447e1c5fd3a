package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/imyashkale/shutdownmanager/internal/lifecycle"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

// ValidationError reports a malformed or missing field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a natural-key collision on a direct create or rename
type ConflictError struct {
	Entity models.EntityType
	Field  string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Key)
}

// NotFoundError reports an operation on an unknown id
type NotFoundError struct {
	Entity models.EntityType
	Id     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Id)
}

// IllegalTransitionError reports a regressive status change
type IllegalTransitionError = lifecycle.IllegalTransitionError

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError converts validator output into a *ValidationError for the first failing field
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "ip":
		msg = fmt.Sprintf("%q is not a valid IPv4 or IPv6 address", fmt.Sprint(fe.Value()))
	case "min":
		if fe.Kind() == reflect.String {
			msg = "must not be empty"
		} else {
			msg = "must be at least " + fe.Param()
		}
	case "max":
		msg = "must be at most " + fe.Param()
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}
