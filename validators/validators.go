// Package validators plugs go-playground/validator into Echo.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/anonto42/newsflash/backend/internal/apperr"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator implements echo.Validator. Failures come back as validation
// errors so the HTTP error handler renders them as 400s.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterStructValidation(createPostRule, models.CreatePostRequest{})
	return &Validator{validate: v}
}

func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperr.Validation("%s", describe(fieldErrs))
	}
	return apperr.Validation("%s", err.Error())
}

// createPostRule checks the audience union: the type decides which of
// targetFriendId and groupIds must be present.
func createPostRule(sl validator.StructLevel) {
	req := sl.Current().Interface().(models.CreatePostRequest)
	if problem := req.Audience.Normalize().Problem(); problem != "" {
		sl.ReportError(req.Audience.Type, "audienceType", "Type", "audience", problem)
	}
}

func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, message(fe))
	}
	return strings.Join(msgs, "; ")
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "audience":
		return fe.Param()
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
