package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tutorly/tutorly/core"
)

var (
	signupRoleTag  = "signuprole"
	signupRoleText = "{0} must be one of PARENT or TEACHER"

	userRoleTag  = "userrole"
	userRoleText = "{0} must be one of PARENT, TEACHER or ADMIN"

	contactChannelTag  = "contactchannel"
	contactChannelText = "{0} must be one of EMAIL, PHONE or MESSAGE"
)

// InitValidators registers the user validation tags.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnumValidation(validate, translator, signupRoleTag, signupRoleText, SignupRoles...)
	core.RegisterEnumValidation(validate, translator, userRoleTag, userRoleText, AllRoles...)
	core.RegisterEnumValidation(validate, translator, contactChannelTag, contactChannelText, ContactChannels...)
}
