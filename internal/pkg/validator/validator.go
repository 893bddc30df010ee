package validator

import (
	"github.com/go-playground/validator/v10"
	"github.com/residential-history/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// supported_year - год внутри domain.SupportedYears
	_ = validate.RegisterValidation("supported_year", func(fl validator.FieldLevel) bool {
		return domain.SupportedYears.Contains(int(fl.Field().Int()))
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
