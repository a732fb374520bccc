package validator

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

type ValidationRule struct {
	Rule func(v *validator.Validate)
	// Tag and Message turn a failed rule into a user facing message.
	Tag     string
	Message func(value string) string
}

// Validator is a wrapper around the actual validator
// It sets up the validator and extract the rule error message from the underlying error
type Validator struct {
	validator *validator.Validate
	rules     []ValidationRule
}

func NewValidator() *Validator {
	v := validator.New()
	return &Validator{validator: v}
}

func (v *Validator) Register(rules ...ValidationRule) {
	for _, validationRule := range rules {
		validationRule.Rule(v.validator)
	}
	v.rules = append(v.rules, rules...)
}

// Struct validates s field by field and reports the first failure as
// *ErrInvalidForm carrying the message of the failed rule.
func (v *Validator) Struct(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return err
	}

	fe := validationErrs[0]
	value := fmt.Sprint(fe.Value())
	for _, rule := range v.rules {
		if rule.Tag == fe.Tag() && rule.Message != nil {
			return NewErrInvalidForm("%s", rule.Message(value))
		}
	}
	return NewErrInvalidForm("invalid %s: %s", fe.Field(), value)
}
