package pricing

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

type fixture struct {
	cfg          Config
	packageID    uuid.UUID
	cityID       uuid.UUID
	neighborhood uuid.UUID
}

func newFixture() fixture {
	packageID := uuid.New()
	cityID := uuid.New()
	hoodID := uuid.New()

	return fixture{
		packageID:    packageID,
		cityID:       cityID,
		neighborhood: hoodID,
		cfg: Config{
			Packages: map[uuid.UUID]Package{
				packageID: {
					ID:        packageID,
					Name:      "standard",
					BasePrice: d("500"),
					Mode:      ModeIncremental,
					AreaBasis: AreaCombined,
					Tiers: []Tier{
						{MinArea: d("0"), MaxArea: dp("250"), PricePerSqm: d("1")},
						{MinArea: d("250"), MaxArea: dp("500"), PricePerSqm: d("2")},
						{MinArea: d("500"), PricePerSqm: d("3")},
					},
				},
			},
			Cities: map[uuid.UUID]string{cityID: "Riyadh"},
			Neighborhoods: map[uuid.UUID]Neighborhood{
				hoodID: {
					ID:              hoodID,
					CityID:          cityID,
					Name:            "Al Olaya",
					LevelCode:       "A",
					Multiplier:      dp("1.2"),
					LevelMultiplier: d("1.5"),
					ApplyAboveArea:  d("300"),
				},
			},
			AgeMultipliers:     map[string]decimal.Decimal{"new": d("1.0"), "over_10": d("1.1")},
			PurposeMultipliers: map[string]decimal.Decimal{"purchase": d("1.0"), "legal": d("1.25")},
			VATPercentage:      d("15"),
			Rules:              Rules{},
		},
	}
}

func (f fixture) input(land, covered string) Input {
	return Input{
		PackageID:      f.packageID,
		CityID:         f.cityID,
		NeighborhoodID: f.neighborhood,
		PropertyAge:    "over_10",
		Purpose:        "purchase",
		LandArea:       d(land),
		CoveredArea:    d(covered),
	}
}

func TestCompute_WorkedExample(t *testing.T) {
	f := newFixture()

	got, err := Compute(f.input("400", "200"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// base = 500 + 3 × (600 − 500) = 800
	checks := map[string][2]decimal.Decimal{
		"totalArea":              {got.TotalArea, d("600")},
		"basePrice":              {got.BasePrice, d("800")},
		"ageMultiplier":          {got.AgeMultiplier, d("1.1")},
		"purposeMultiplier":      {got.PurposeMultiplier, d("1.0")},
		"neighborhoodMultiplier": {got.NeighborhoodMultiplier, d("1.2")},
		"priceBeforeVat":         {got.PriceBeforeVAT, d("1056")},
		"vatAmount":              {got.VATAmount, d("158.40")},
		"finalPrice":             {got.FinalPrice, d("1214.40")},
	}
	for name, pair := range checks {
		if !pair[0].Equal(pair[1]) {
			t.Fatalf("%s: expected %s, got %s", name, pair[1], pair[0])
		}
	}
	if !got.NeighborhoodMultiplierApplied {
		t.Fatal("expected neighborhood multiplier to apply above threshold")
	}
	if got.Tier.MaxArea != nil || !got.Tier.MinArea.Equal(d("500")) {
		t.Fatalf("expected open-ended 500 tier, got %+v", got.Tier)
	}
}

func TestCompute_NeighborhoodMultiplierIgnoredAtOrBelowThreshold(t *testing.T) {
	f := newFixture()

	for _, covered := range []string{"0", "100", "300"} {
		got, err := Compute(f.input("0", covered), f.cfg)
		if err != nil {
			t.Fatalf("area %s: unexpected error: %v", covered, err)
		}
		if !got.NeighborhoodMultiplier.Equal(d("1")) || got.NeighborhoodMultiplierApplied {
			t.Fatalf("area %s: expected multiplier 1, got %s", covered, got.NeighborhoodMultiplier)
		}
	}
}

func TestCompute_NeighborhoodFallsBackToLevelMultiplier(t *testing.T) {
	f := newFixture()
	hood := f.cfg.Neighborhoods[f.neighborhood]
	hood.Multiplier = nil
	f.cfg.Neighborhoods[f.neighborhood] = hood

	got, err := Compute(f.input("400", "200"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.NeighborhoodMultiplier.Equal(d("1.5")) {
		t.Fatalf("expected level multiplier 1.5, got %s", got.NeighborhoodMultiplier)
	}
}

func TestCompute_FlatModeChargesWholeArea(t *testing.T) {
	f := newFixture()
	pkg := f.cfg.Packages[f.packageID]
	pkg.Mode = ModeFlat
	f.cfg.Packages[f.packageID] = pkg

	got, err := Compute(f.input("0", "100"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 500 + 1 × 100
	if !got.BasePrice.Equal(d("600")) {
		t.Fatalf("expected base 600, got %s", got.BasePrice)
	}
}

func TestCompute_AreaBasisCoveredIgnoresLand(t *testing.T) {
	f := newFixture()
	pkg := f.cfg.Packages[f.packageID]
	pkg.AreaBasis = AreaCovered
	f.cfg.Packages[f.packageID] = pkg

	got, err := Compute(f.input("1000", "200"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalArea.Equal(d("200")) || got.AreaBasis != AreaCovered {
		t.Fatalf("expected covered total 200, got %s (%s)", got.TotalArea, got.AreaBasis)
	}
}

func TestCompute_TierBoundaryBelongsToUpperTier(t *testing.T) {
	f := newFixture()

	got, err := Compute(f.input("0", "250"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Tier.MinArea.Equal(d("250")) {
		t.Fatalf("expected tier starting at 250, got %s", got.Tier.MinArea)
	}
	// 500 + 2 × 0
	if !got.BasePrice.Equal(d("500")) {
		t.Fatalf("expected base 500, got %s", got.BasePrice)
	}
}

func TestCompute_ValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		field string
		mut   func(f *fixture, in *Input)
	}{
		{"unknown package", "packageId", func(_ *fixture, in *Input) { in.PackageID = uuid.New() }},
		{"unknown city", "cityId", func(_ *fixture, in *Input) { in.CityID = uuid.New() }},
		{"unknown neighborhood", "neighborhoodId", func(_ *fixture, in *Input) { in.NeighborhoodID = uuid.New() }},
		{"neighborhood of other city", "neighborhoodId", func(f *fixture, in *Input) {
			other := uuid.New()
			f.cfg.Cities[other] = "Jeddah"
			in.CityID = other
		}},
		{"negative land", "landArea", func(_ *fixture, in *Input) { in.LandArea = d("-1") }},
		{"negative covered", "coveredArea", func(_ *fixture, in *Input) { in.CoveredArea = d("-0.5") }},
		{"land below a hundredth", "landArea", func(_ *fixture, in *Input) { in.LandArea = d("10.004") }},
		{"covered below a hundredth", "coveredArea", func(_ *fixture, in *Input) { in.CoveredArea = d("200.001") }},
		{"land beyond storage", "landArea", func(_ *fixture, in *Input) { in.LandArea = d("10000000000") }},
		{"total beyond storage", "totalArea", func(_ *fixture, in *Input) {
			in.LandArea = d("9999999999")
			in.CoveredArea = d("9999999999")
		}},
		{"price beyond storage", "totalArea", func(f *fixture, in *Input) {
			in.LandArea = d("5000000000")
			in.CoveredArea = d("0")
		}},
		{"unknown age", "propertyAge", func(_ *fixture, in *Input) { in.PropertyAge = "ancient" }},
		{"unknown purpose", "purpose", func(_ *fixture, in *Input) { in.Purpose = "curiosity" }},
		{"no tier", "totalArea", func(f *fixture, _ *Input) {
			pkg := f.cfg.Packages[f.packageID]
			pkg.Tiers = []Tier{{MinArea: d("1000"), PricePerSqm: d("1")}}
			f.cfg.Packages[f.packageID] = pkg
		}},
		{"below min rule", "totalArea", func(f *fixture, _ *Input) { f.cfg.Rules[RuleMinTotalArea] = "1000" }},
		{"above max rule", "totalArea", func(f *fixture, _ *Input) { f.cfg.Rules[RuleMaxTotalArea] = "100" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			in := f.input("400", "200")
			tc.mut(&f, &in)

			_, err := Compute(in, f.cfg)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}
}

func TestVATAmount_RoundsHalfUp(t *testing.T) {
	cases := []struct {
		price, pct, want string
	}{
		{"10.10", "15", "1.52"},   // 1.515
		{"17.83", "15", "2.67"},   // 2.6745
		{"0.10", "15", "0.02"},    // 0.015
		{"1056.00", "15", "158.4"},
		{"99.99", "0", "0"},
	}
	for _, tc := range cases {
		got := VATAmount(d(tc.price), d(tc.pct), DefaultCurrencyScale)
		if !got.Equal(d(tc.want)) {
			t.Fatalf("VAT on %s at %s%%: expected %s, got %s", tc.price, tc.pct, tc.want, got)
		}
	}
}

func TestCompute_FinalPriceIsSumForManyAreas(t *testing.T) {
	f := newFixture()
	f.cfg.VATPercentage = d("15")

	for covered := 0; covered <= 900; covered += 37 {
		in := f.input("13.37", decimal.NewFromInt(int64(covered)).String())
		got, err := Compute(in, f.cfg)
		if err != nil {
			t.Fatalf("covered %d: unexpected error: %v", covered, err)
		}
		if !got.FinalPrice.Equal(got.PriceBeforeVAT.Add(got.VATAmount)) {
			t.Fatalf("covered %d: final %s != %s + %s", covered, got.FinalPrice, got.PriceBeforeVAT, got.VATAmount)
		}
		want := got.PriceBeforeVAT.Mul(d("0.15")).Round(2)
		if !got.VATAmount.Equal(want) {
			t.Fatalf("covered %d: vat %s != round(%s × 0.15) = %s", covered, got.VATAmount, got.PriceBeforeVAT, want)
		}
	}
}

func TestCompute_CurrencyScaleRule(t *testing.T) {
	f := newFixture()
	f.cfg.Rules[RuleCurrencyScale] = "0"

	got, err := Compute(f.input("13", "100"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// base 613, × 1.1 = 674.3 → 674, VAT 101.1 → 101
	if !got.PriceBeforeVAT.Equal(d("674")) || !got.VATAmount.Equal(d("101")) || !got.FinalPrice.Equal(d("775")) {
		t.Fatalf("unexpected whole-unit prices: %s + %s = %s", got.PriceBeforeVAT, got.VATAmount, got.FinalPrice)
	}
}

func TestCompute_CurrencyScaleAboveStoredPrecisionFallsBack(t *testing.T) {
	f := newFixture()
	f.cfg.Rules[RuleCurrencyScale] = "3"

	got, err := Compute(f.input("13.37", "500"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for name, v := range map[string]decimal.Decimal{
		"base":      got.BasePrice,
		"beforeVat": got.PriceBeforeVAT,
		"vat":       got.VATAmount,
		"final":     got.FinalPrice,
	} {
		if !v.Equal(v.Round(2)) {
			t.Fatalf("%s %s has more than two decimals", name, v)
		}
	}
	if !got.FinalPrice.Equal(got.PriceBeforeVAT.Add(got.VATAmount)) {
		t.Fatalf("final %s != %s + %s", got.FinalPrice, got.PriceBeforeVAT, got.VATAmount)
	}
}

func TestCompute_AcceptsTwoDecimalAreas(t *testing.T) {
	f := newFixture()

	got, err := Compute(f.input("10.25", "200.50"), f.cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalArea.Equal(d("210.75")) {
		t.Fatalf("expected total 210.75, got %s", got.TotalArea)
	}
}
