package validation

import (
	"strings"
	"testing"
)

func TestValidateExternalID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"clerk id", "user_2NNEqL2nrIRdJ194ndJqAHwEfxC", false},
		{"short", "u_1", false},
		{"empty", "", true},
		{"space", "user 1", true},
		{"newline", "user_1\n", true},
		{"too long", strings.Repeat("a", MaxExternalIDLength+1), true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateExternalID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateExternalID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestExternalIDTag(t *testing.T) {
	t.Parallel()

	type payload struct {
		ID string `validate:"required,external_id"`
	}

	if err := Validate.Struct(payload{ID: "u_1"}); err != nil {
		t.Errorf("Expected valid payload, got %v", err)
	}
	err := Validate.Struct(payload{ID: "bad id"})
	if err == nil {
		t.Fatal("Expected validation error for id with space")
	}
	fields := FieldErrors(err)
	if len(fields) != 1 || fields[0] != "payload.ID: external_id" {
		t.Errorf("FieldErrors = %v, want [payload.ID: external_id]", fields)
	}
}

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	if got := SanitizeText("  Ada\x00 Lovelace\n "); got != "Ada Lovelace" {
		t.Errorf("SanitizeText = %q, want %q", got, "Ada Lovelace")
	}
}
