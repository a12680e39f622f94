package payment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

var (
	statusTag  = "paymentstatus"
	statusText = "{0} must be one of PENDING, COMPLETED, FAILED or REFUNDED"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, statusTag, statusText, Statuses...)
}
