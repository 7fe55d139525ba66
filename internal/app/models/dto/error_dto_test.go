package dto

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestErrorResponseJSON(t *testing.T) {
	tests := []struct {
		name        string
		detail      *ErrorDetail
		wantDetails bool
	}{
		{"without details", NewErrorDetail(ErrorCodeInvalidState, "Application is already approved"), false},
		{"with details", NewErrorDetail(ErrorCodeForbidden, "You cannot address this audience").
			WithField("audience").
			WithDetails(map[string]interface{}{"allowedAudiences": []string{"ALL_STUDENTS"}}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(NewErrorResponse(tt.detail))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var decoded struct {
				Success bool                   `json:"success"`
				Error   map[string]interface{} `json:"error"`
			}
			if err := json.Unmarshal(raw, &decoded); err != nil {
				t.Fatalf("unmarshal %s: %v", raw, err)
			}
			if decoded.Success || decoded.Error["code"] != string(tt.detail.Code) || decoded.Error["severity"] != string(ErrorSeverityError) {
				t.Fatalf("envelope = %s", raw)
			}
			if _, ok := decoded.Error["details"]; ok != tt.wantDetails {
				t.Fatalf("details present = %v, want %v: %s", ok, tt.wantDetails, raw)
			}
		})
	}
}

func TestFieldErrorsPasswordConfirmation(t *testing.T) {
	err := validator.New().Struct(ChangePasswordRequest{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
		ConfirmPassword: "other-password",
	})
	fields := FieldErrors(err)
	if got := fields["confirmPassword"]; got != "confirmPassword must match newPassword" {
		t.Fatalf("confirmPassword error = %q (all: %v)", got, fields)
	}
	if len(fields) != 1 {
		t.Fatalf("unexpected field errors: %v", fields)
	}
}
