// internal/utils/validator.go
package utils

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

// Money columns are decimal(12,2).
const MoneyScale = 2

// MaxMoney is the largest amount a money column holds.
var MaxMoney = decimal.New(1, 10).Sub(decimal.New(1, -MoneyScale))

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("notblank", validators.NotBlank)
	validate.RegisterValidation("money", validateMoney)
	validate.RegisterValidation("nonneg_int", validateNonNegativeInt)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

// validateMoney accepts strings holding a decimal amount >= 0 that fits a
// money column without rounding.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.LessThanOrEqual(MaxMoney) && d.Equal(d.Round(MoneyScale))
}

// validateNonNegativeInt accepts strings holding a whole number >= 0.
func validateNonNegativeInt(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return n >= 0
}
