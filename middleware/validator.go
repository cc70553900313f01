package middleware

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct прогоняет DTO по validator-тегам; используется в handlers.
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateVar проверяет одиночное значение по тегу; нужен частичным
// обновлениям, где поля приходят указателями и структурные теги не работают.
func ValidateVar(value interface{}, tag string) error {
	return validate.Var(value, tag)
}
