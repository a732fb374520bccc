package validator

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

func memberValidator(isMember func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return isMember(val)
	}
}

func filenameValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return val != ""
}

func extensionValidator(isSupported func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return isSupported(filepath.Ext(val))
	}
}
