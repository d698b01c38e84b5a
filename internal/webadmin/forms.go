// ABOUTME: Form structs for the console's text forms, checked with validator struct tags
// ABOUTME: Each failed rule maps to the French message the operator sees

package webadmin

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// loginForm is the posted login form
type loginForm struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// userForm is the posted new-user form
type userForm struct {
	Username        string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// documentEditForm is the posted metadata edit of one document
type documentEditForm struct {
	Title       string `validate:"required"`
	Description string
}

var (
	loginFormMessages        = map[string]string{"required": msgLoginRequired}
	userFormMessages         = map[string]string{"required": msgUserFieldsRequired, "eqfield": msgPasswordMismatch}
	documentEditFormMessages = map[string]string{"required": backend.MsgTitleRequired}
)

// checkFields validates form and returns the message for the first failed rule,
// or "" when the form is valid. Fields are reported in declaration order.
func checkFields(form any, messages map[string]string) string {
	err := validate.Struct(form)
	if err == nil {
		return ""
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := messages[fieldErrs[0].Tag()]; ok {
			return msg
		}
	}
	return msgInvalidRequest
}
