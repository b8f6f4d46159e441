// Package validation проверяет входящие запросы через go-playground/validator
// и собственные правила для паролей и координат.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// get возвращает общий экземпляр валидатора (он кэширует разбор структур)
func get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// В сообщениях используем имена полей из JSON, как их видит клиент
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return ValidatePassword(fl.Field().String()) == nil
		})
		_ = validate.RegisterValidation("coordinates", validateCoordinates)
	})
	return validate
}

// ValidateStruct проверяет структуру по тегам validate.
// Возвращает ошибку с описанием первого невалидного поля.
func ValidateStruct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation failed: %w", err)
	}

	return errors.New(describe(verrs[0]))
}

// ValidateVar проверяет одно значение по тегу, например "required,email"
func ValidateVar(field any, tag string) error {
	return get().Var(field, tag)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "password":
		return fmt.Sprintf("%s must be %d-%d characters long", field, MinPasswordLen, MaxPasswordLen)
	case "coordinates":
		return fmt.Sprintf("%s must be [longitude, latitude]", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validateCoordinates проверяет пару [долгота, широта]
func validateCoordinates(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Array && f.Kind() != reflect.Slice {
		return false
	}
	if f.Len() != 2 {
		return false
	}

	lon, lat := f.Index(0).Float(), f.Index(1).Float()
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
