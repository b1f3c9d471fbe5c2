package main

import (
	"strings"
	"testing"
)

func TestParseSeed_DefaultFileIsValid(t *testing.T) {
	seed, err := parseSeed(defaultSeed)
	if err != nil {
		t.Fatalf("expected embedded seed to be valid: %v", err)
	}
	if seed.Admin.Email == "" {
		t.Fatal("expected admin email")
	}
	if len(seed.Cities) == 0 || len(seed.Packages) == 0 {
		t.Fatalf("expected cities and packages, got %d cities and %d packages", len(seed.Cities), len(seed.Packages))
	}

	keys := make(map[string]bool)
	for _, r := range seed.Rules {
		keys[r.Key] = true
	}
	for _, key := range []string{"min_total_area", "max_total_area", "currency_scale"} {
		if !keys[key] {
			t.Fatalf("expected rule %s in default seed", key)
		}
	}
}

func TestParseSeed_RejectsUnknownLevel(t *testing.T) {
	raw := `
admin:
  email: admin@example.com
vatPercentage: "15"
levels:
  - code: A
    multiplier: "1.2"
cities:
  - name: Riyadh
    neighborhoods:
      - name: Olaya
        level: Z
`
	_, err := parseSeed([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), `unknown level "Z"`) {
		t.Fatalf("expected unknown level error, got %v", err)
	}
}

func TestParseSeed_RejectsTierGap(t *testing.T) {
	raw := `
admin:
  email: admin@example.com
vatPercentage: "15"
packages:
  - name: basic
    basePrice: "100"
    pricingMode: incremental
    tiers:
      - minArea: "0"
        maxArea: "100"
        pricePerSqm: "1"
      - minArea: "150"
        pricePerSqm: "1"
`
	_, err := parseSeed([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "must equal previous tier maxArea") {
		t.Fatalf("expected tier gap error, got %v", err)
	}
}

func TestParseSeed_RejectsVATOutOfRange(t *testing.T) {
	raw := `
admin:
  email: admin@example.com
vatPercentage: "120"
`
	_, err := parseSeed([]byte(raw))
	if err == nil || !strings.Contains(err.Error(), "vatPercentage") {
		t.Fatalf("expected vat error, got %v", err)
	}
}

func TestNullable(t *testing.T) {
	if nullable("") != nil {
		t.Fatal("expected nil for empty string")
	}
	if v := nullable("1.2"); v == nil || *v != "1.2" {
		t.Fatalf("expected pointer to 1.2, got %v", v)
	}
}
