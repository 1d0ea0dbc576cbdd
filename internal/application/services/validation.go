package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/go-playground/validator/v10"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("emailshape", func(fl validator.FieldLevel) bool {
		return emailShape.MatchString(fl.Field().String())
	})
	return v
}

// toValidationError reports the first failing field as a leads.ValidationError.
func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return leads.NewValidationError("request", err.Error())
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return leads.NewValidationError(fe.Field(), "is required")
	case "emailshape":
		return leads.NewValidationError(fe.Field(), "must be a valid email address")
	case "max":
		return leads.NewValidationError(fe.Field(), "must be at most "+fe.Param()+" characters")
	case "url":
		return leads.NewValidationError(fe.Field(), "must be a valid URL")
	default:
		return leads.NewValidationError(fe.Field(), "is invalid")
	}
}
