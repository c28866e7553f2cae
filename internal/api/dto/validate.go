package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct's validate tags and reports failures as a 422.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewUnprocessable(nil, err)
	}
	details := make(map[string]any, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[jsonName(fe.Field())] = fe.Tag()
	}
	return apperrors.NewUnprocessable(details, err)
}

func jsonName(field string) string {
	return strings.ToLower(field)
}
