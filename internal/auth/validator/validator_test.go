package validator

import (
	"testing"

	platformvalidator "inspection_portal/platform/validator"
)

func TestIsStrongPassword(t *testing.T) {
	cases := map[string]bool{
		"Passw0rd":    true,
		"password1":   false,
		"PASSWORD1":   false,
		"Password":    false,
		"Pa1":         false,
		"Sup3r$ecret": true,
	}
	for input, want := range cases {
		if got := IsStrongPassword(input); got != want {
			t.Fatalf("%q: expected %v, got %v", input, want, got)
		}
	}
}

func TestRegister_EnablesTag(t *testing.T) {
	v := platformvalidator.New()
	if err := Register(v); err != nil {
		t.Fatalf("register: %v", err)
	}

	type req struct {
		Password string `json:"password" validate:"required,strongpassword"`
	}
	if err := v.Struct(req{Password: "weak"}); err == nil {
		t.Fatal("expected weak password to fail")
	}
	if err := v.Struct(req{Password: "Str0ngPass"}); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}
