package statistic

import (
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/scorebook/core"
)

var (
	orderingTag  = "ordering"
	orderingText = "invalid ordering field"
	int64Tag     = "int64"
	int64Text    = "{0} must be a valid number"
)

// InitValidators registers the statistics validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(orderingTag, orderingValidation)
	core.RegisterCustomTranslation(validate, translator, orderingTag, orderingText)
	_ = validate.RegisterValidation(int64Tag, int64Validation)
	core.RegisterCustomTranslation(validate, translator, int64Tag, int64Text)
}

// int64Validation checks that a string param is a base 10 integer that fits in an int64.
func int64Validation(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := strconv.ParseInt(val, 10, 64)
	return err == nil
}

// orderingValidation checks that every field of an ordering param ("-total,hk1") is a sort key.
func orderingValidation(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if strings.TrimSpace(val) == "" {
		return true
	}
	for _, ord := range core.ParseOrderings(val) {
		if _, err := ParseSortKey(ord.Field); err != nil {
			return false
		}
	}
	return true
}
