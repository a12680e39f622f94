package job

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

var (
	jobModeTag  = "jobmode"
	jobModeText = "{0} must be one of ONLINE, IN_PERSON or HYBRID"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, jobModeTag, jobModeText, Modes...)
}
