package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"inspection_portal/internal/pricing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

type seedFile struct {
	Admin              seedAdmin        `yaml:"admin"`
	VATPercentage      string           `yaml:"vatPercentage"`
	Levels             []seedLevel      `yaml:"levels"`
	Cities             []seedCity       `yaml:"cities"`
	Packages           []seedPackage    `yaml:"packages"`
	PropertyAges       []seedMultiplier `yaml:"propertyAges"`
	InspectionPurposes []seedMultiplier `yaml:"inspectionPurposes"`
	Rules              []seedRule       `yaml:"rules"`
}

type seedAdmin struct {
	Email    string `yaml:"email"`
	FullName string `yaml:"fullName"`
}

type seedLevel struct {
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	Multiplier string `yaml:"multiplier"`
}

type seedCity struct {
	Name          string             `yaml:"name"`
	Neighborhoods []seedNeighborhood `yaml:"neighborhoods"`
}

type seedNeighborhood struct {
	Name           string `yaml:"name"`
	Level          string `yaml:"level"`
	Multiplier     string `yaml:"multiplier"`
	ApplyAboveArea string `yaml:"applyAboveArea"`
}

type seedPackage struct {
	Name        string     `yaml:"name"`
	DisplayName string     `yaml:"displayName"`
	Description string     `yaml:"description"`
	BasePrice   string     `yaml:"basePrice"`
	PricingMode string     `yaml:"pricingMode"`
	AreaBasis   string     `yaml:"areaBasis"`
	Tiers       []seedTier `yaml:"tiers"`
}

type seedTier struct {
	MinArea     string `yaml:"minArea"`
	MaxArea     string `yaml:"maxArea"`
	PricePerSqm string `yaml:"pricePerSqm"`
}

type seedMultiplier struct {
	Key        string `yaml:"key"`
	Label      string `yaml:"label"`
	Multiplier string `yaml:"multiplier"`
}

type seedRule struct {
	Key         string `yaml:"key"`
	Value       string `yaml:"value"`
	ValueType   string `yaml:"valueType"`
	Description string `yaml:"description"`
}

func parseSeed(raw []byte) (*seedFile, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *seedFile) validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(strings.Contains(f.Admin.Email, "@"), "admin.email must be an email address")
	vat, err := decimal.NewFromString(f.VATPercentage)
	check(err == nil && !vat.IsNegative() && vat.LessThanOrEqual(decimal.NewFromInt(100)), "vatPercentage must be between 0 and 100")

	levels := make(map[string]bool, len(f.Levels))
	for _, l := range f.Levels {
		check(l.Code != "", "level code is required")
		check(positive(l.Multiplier), "level %s: multiplier must be positive", l.Code)
		levels[l.Code] = true
	}

	for _, c := range f.Cities {
		check(c.Name != "", "city name is required")
		for _, n := range c.Neighborhoods {
			check(levels[n.Level], "neighborhood %s/%s: unknown level %q", c.Name, n.Name, n.Level)
			check(n.Multiplier == "" || positive(n.Multiplier), "neighborhood %s/%s: multiplier must be positive", c.Name, n.Name)
			check(n.ApplyAboveArea == "" || nonNegative(n.ApplyAboveArea), "neighborhood %s/%s: applyAboveArea must not be negative", c.Name, n.Name)
		}
	}

	for _, p := range f.Packages {
		check(nonNegative(p.BasePrice), "package %s: basePrice must not be negative", p.Name)
		check(p.PricingMode == string(pricing.ModeIncremental) || p.PricingMode == string(pricing.ModeFlat), "package %s: unknown pricingMode %q", p.Name, p.PricingMode)
		tiers, err := p.tiers()
		if err != nil {
			errs = append(errs, fmt.Errorf("package %s: %w", p.Name, err))
			continue
		}
		for _, problem := range pricing.ValidateTiers(tiers) {
			errs = append(errs, fmt.Errorf("package %s: tier %d %s %s", p.Name, problem.Index, problem.Field, problem.Message))
		}
	}

	for _, m := range append(append([]seedMultiplier{}, f.PropertyAges...), f.InspectionPurposes...) {
		check(m.Key != "", "multiplier key is required")
		check(positive(m.Multiplier), "multiplier %s must be positive", m.Key)
	}

	for _, r := range f.Rules {
		check(r.ValueType == "number" || r.ValueType == "boolean" || r.ValueType == "string", "rule %s: unknown valueType %q", r.Key, r.ValueType)
		if r.ValueType == "number" {
			check(nonNegative(r.Value), "rule %s: value must be a non-negative number", r.Key)
		}
	}

	return errors.Join(errs...)
}

func (p seedPackage) tiers() ([]pricing.Tier, error) {
	out := make([]pricing.Tier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		minArea, err := decimal.NewFromString(t.MinArea)
		if err != nil {
			return nil, fmt.Errorf("minArea %q: %w", t.MinArea, err)
		}
		rate, err := decimal.NewFromString(t.PricePerSqm)
		if err != nil {
			return nil, fmt.Errorf("pricePerSqm %q: %w", t.PricePerSqm, err)
		}
		tier := pricing.Tier{MinArea: minArea, PricePerSqm: rate}
		if t.MaxArea != "" {
			maxArea, err := decimal.NewFromString(t.MaxArea)
			if err != nil {
				return nil, fmt.Errorf("maxArea %q: %w", t.MaxArea, err)
			}
			tier.MaxArea = &maxArea
		}
		out = append(out, tier)
	}
	return out, nil
}

func positive(raw string) bool {
	d, err := decimal.NewFromString(raw)
	return err == nil && d.IsPositive()
}

func nonNegative(raw string) bool {
	d, err := decimal.NewFromString(raw)
	return err == nil && !d.IsNegative()
}

func nullable(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}

func orZero(raw string) string {
	if raw == "" {
		return "0"
	}
	return raw
}

// apply writes the seed inside tx. Existing rows are left untouched so the
// command can run repeatedly.
func (f *seedFile) apply(ctx context.Context, tx pgx.Tx, adminPasswordHash string) (seedStats, error) {
	var stats seedStats

	tag, err := tx.Exec(ctx, `
		INSERT INTO users (email, password_hash, full_name, role)
		VALUES (lower($1), $2, $3, 'admin')
		ON CONFLICT (email) DO NOTHING`,
		f.Admin.Email, adminPasswordHash, f.Admin.FullName)
	if err != nil {
		return stats, fmt.Errorf("seed admin: %w", err)
	}
	stats.Users += int(tag.RowsAffected())

	levelIDs := make(map[string]string, len(f.Levels))
	for i, l := range f.Levels {
		id, created, err := upsertReturningID(ctx, tx, `
			INSERT INTO neighborhood_levels (code, name, multiplier, display_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING
			RETURNING id`,
			`SELECT id FROM neighborhood_levels WHERE code = $1`,
			[]any{l.Code, l.Name, l.Multiplier, i}, l.Code)
		if err != nil {
			return stats, fmt.Errorf("seed level %s: %w", l.Code, err)
		}
		levelIDs[l.Code] = id
		stats.count(created)
	}

	for i, c := range f.Cities {
		cityID, created, err := upsertReturningID(ctx, tx, `
			INSERT INTO cities (name, display_order)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
			RETURNING id`,
			`SELECT id FROM cities WHERE name = $1`,
			[]any{c.Name, i}, c.Name)
		if err != nil {
			return stats, fmt.Errorf("seed city %s: %w", c.Name, err)
		}
		stats.count(created)

		for j, n := range c.Neighborhoods {
			tag, err := tx.Exec(ctx, `
				INSERT INTO neighborhoods (city_id, level_id, name, multiplier, apply_above_area, display_order)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (city_id, name) DO NOTHING`,
				cityID, levelIDs[n.Level], n.Name, nullable(n.Multiplier), orZero(n.ApplyAboveArea), j)
			if err != nil {
				return stats, fmt.Errorf("seed neighborhood %s/%s: %w", c.Name, n.Name, err)
			}
			stats.Rows += int(tag.RowsAffected())
		}
	}

	for i, p := range f.Packages {
		packageID, created, err := upsertReturningID(ctx, tx, `
			INSERT INTO packages (name, display_name, description, base_price, pricing_mode, area_basis, display_order)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO NOTHING
			RETURNING id`,
			`SELECT id FROM packages WHERE name = $1`,
			[]any{p.Name, p.DisplayName, p.Description, p.BasePrice, p.PricingMode, p.AreaBasis, i}, p.Name)
		if err != nil {
			return stats, fmt.Errorf("seed package %s: %w", p.Name, err)
		}
		stats.count(created)
		if !created {
			continue
		}
		for pos, t := range p.Tiers {
			if _, err := tx.Exec(ctx, `
				INSERT INTO package_tiers (package_id, position, min_area, max_area, price_per_sqm)
				VALUES ($1, $2, $3, $4, $5)`,
				packageID, pos, t.MinArea, nullable(t.MaxArea), t.PricePerSqm); err != nil {
				return stats, fmt.Errorf("seed package %s tier %d: %w", p.Name, pos, err)
			}
			stats.Rows++
		}
	}

	if err := seedMultipliers(ctx, tx, "property_age_multipliers", f.PropertyAges, &stats); err != nil {
		return stats, err
	}
	if err := seedMultipliers(ctx, tx, "inspection_purpose_multipliers", f.InspectionPurposes, &stats); err != nil {
		return stats, err
	}

	for i, r := range f.Rules {
		tag, err := tx.Exec(ctx, `
			INSERT INTO calculation_rules (key, value, value_type, description, display_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (key) DO NOTHING`,
			r.Key, r.Value, r.ValueType, r.Description, i)
		if err != nil {
			return stats, fmt.Errorf("seed rule %s: %w", r.Key, err)
		}
		stats.Rows += int(tag.RowsAffected())
	}

	tag, err = tx.Exec(ctx, `
		INSERT INTO vat_settings (percentage, is_active)
		SELECT $1, true
		WHERE NOT EXISTS (SELECT 1 FROM vat_settings WHERE is_active)`,
		f.VATPercentage)
	if err != nil {
		return stats, fmt.Errorf("seed vat: %w", err)
	}
	stats.Rows += int(tag.RowsAffected())

	return stats, nil
}

type seedStats struct {
	Users int
	Rows  int
}

func (s *seedStats) count(created bool) {
	if created {
		s.Rows++
	}
}

// seedMultipliers fills one of the two bucket tables; table is never user input.
func seedMultipliers(ctx context.Context, tx pgx.Tx, table string, items []seedMultiplier, stats *seedStats) error {
	query := `INSERT INTO ` + table + ` (key, label, multiplier, display_order)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO NOTHING`
	for i, m := range items {
		tag, err := tx.Exec(ctx, query, m.Key, m.Label, m.Multiplier, i)
		if err != nil {
			return fmt.Errorf("seed %s %s: %w", table, m.Key, err)
		}
		stats.Rows += int(tag.RowsAffected())
	}
	return nil
}

// upsertReturningID inserts a row or looks up the existing one by its natural key.
func upsertReturningID(ctx context.Context, tx pgx.Tx, insert, lookup string, args []any, key string) (string, bool, error) {
	var id string
	err := tx.QueryRow(ctx, insert, args...).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, err
	}
	if err := tx.QueryRow(ctx, lookup, key).Scan(&id); err != nil {
		return "", false, err
	}
	return id, false, nil
}
