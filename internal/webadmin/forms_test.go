package webadmin

import (
	"testing"

	"github.com/bmi-ci/chatbot360-admin/internal/backend"
)

func TestCheckFields(t *testing.T) {
	tests := []struct {
		name     string
		form     any
		messages map[string]string
		want     string
	}{
		{"login ok", loginForm{Username: "admin", Password: "pw"}, loginFormMessages, ""},
		{"login no password", loginForm{Username: "admin"}, loginFormMessages, msgLoginRequired},
		{"user ok", userForm{Username: "awa", Password: "pw", ConfirmPassword: "pw"}, userFormMessages, ""},
		{"user mismatch", userForm{Username: "awa", Password: "pw", ConfirmPassword: "px"}, userFormMessages, msgPasswordMismatch},
		{"user required first", userForm{Password: "pw", ConfirmPassword: "px"}, userFormMessages, msgUserFieldsRequired},
		{"document no title", documentEditForm{Description: "d"}, documentEditFormMessages, backend.MsgTitleRequired},
		{"unmapped rule", userForm{Username: "awa", Password: "pw"}, loginFormMessages, msgInvalidRequest},
	}
	for _, tt := range tests {
		if got := checkFields(tt.form, tt.messages); got != tt.want {
			t.Errorf("%s: checkFields() = %q, want %q", tt.name, got, tt.want)
		}
	}
}
