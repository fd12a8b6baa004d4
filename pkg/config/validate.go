package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct tags and the rules that span several fields.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, getErrorMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}

	known := make(map[string]struct{}, len(c.Source.Columns))
	for _, col := range c.Source.Columns {
		known[col] = struct{}{}
	}
	for _, role := range c.Source.RoleColumns() {
		if _, ok := known[role]; !ok {
			return fmt.Errorf("source column %q is not listed in source.columns", role)
		}
	}
	return nil
}

// RoleColumns returns the source columns the report is built from.
func (s SourceConfig) RoleColumns() []string {
	return []string{
		s.ColISIN, s.ColDate, s.ColTime, s.ColStartPrice,
		s.ColMinPrice, s.ColMaxPrice, s.ColTradedVol,
	}
}

func getErrorMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "datetime":
		return fmt.Sprintf("%s must match layout %s", field, fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
