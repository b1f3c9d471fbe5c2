package service

import (
	"context"
	"sync"
	"testing"
	"time"

	audittransport "inspection_portal/internal/audit/transport"
	"inspection_portal/internal/catalog/repository"
	"inspection_portal/internal/catalog/transport"
	"inspection_portal/platform/apperr"
	"inspection_portal/platform/cache"
	"inspection_portal/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// fakeRepo implements only what each test exercises; the embedded
// interface panics on anything else.
type fakeRepo struct {
	repository.Repository

	mu            sync.Mutex
	cities        map[uuid.UUID]repository.City
	levels        map[uuid.UUID]repository.NeighborhoodLevel
	packages      map[uuid.UUID]repository.Package
	neighborhoods []repository.Neighborhood
	ages          []repository.Multiplier
	purposes      []repository.Multiplier
	rules         []repository.CalculationRule
	vat           *repository.VatSetting
	snapshotReads int
	deactivated   []uuid.UUID
	// citiesRead runs after ActiveCities has read its rows.
	citiesRead func()
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		cities:   map[uuid.UUID]repository.City{},
		levels:   map[uuid.UUID]repository.NeighborhoodLevel{},
		packages: map[uuid.UUID]repository.Package{},
	}
}

func (f *fakeRepo) GetCity(_ context.Context, id uuid.UUID) (repository.City, error) {
	c, ok := f.cities[id]
	if !ok {
		return repository.City{}, apperr.NotFound("city not found")
	}
	return c, nil
}

func (f *fakeRepo) DeactivateCity(_ context.Context, id uuid.UUID) error {
	c := f.cities[id]
	c.IsActive = false
	f.cities[id] = c
	f.deactivated = append(f.deactivated, id)
	return nil
}

func (f *fakeRepo) GetLevel(_ context.Context, id uuid.UUID) (repository.NeighborhoodLevel, error) {
	l, ok := f.levels[id]
	if !ok {
		return repository.NeighborhoodLevel{}, apperr.NotFound("neighborhood level not found")
	}
	return l, nil
}

func (f *fakeRepo) CreateNeighborhood(_ context.Context, n repository.Neighborhood) (repository.Neighborhood, error) {
	n.ID = uuid.New()
	f.neighborhoods = append(f.neighborhoods, n)
	return n, nil
}

func (f *fakeRepo) CreatePackage(_ context.Context, p repository.Package) (repository.Package, error) {
	p.ID = uuid.New()
	f.packages[p.ID] = p
	return p, nil
}

func (f *fakeRepo) CreateRule(_ context.Context, r repository.CalculationRule) (repository.CalculationRule, error) {
	r.ID = uuid.New()
	f.rules = append(f.rules, r)
	return r, nil
}

func (f *fakeRepo) SupersedeVat(_ context.Context, pct decimal.Decimal, createdBy *uuid.UUID) (repository.VatSetting, *repository.VatSetting, error) {
	previous := f.vat
	if previous != nil {
		previous.IsActive = false
	}
	current := repository.VatSetting{ID: uuid.New(), Percentage: pct, IsActive: true, CreatedBy: createdBy, EffectiveFrom: time.Now()}
	f.vat = &current
	return current, previous, nil
}

func (f *fakeRepo) ActiveCities(context.Context) ([]repository.City, error) {
	f.mu.Lock()
	f.snapshotReads++
	f.mu.Unlock()
	var out []repository.City
	for _, c := range f.cities {
		if c.IsActive {
			out = append(out, c)
		}
	}
	if f.citiesRead != nil {
		f.citiesRead()
	}
	return out, nil
}

func (f *fakeRepo) ActiveLevels(context.Context) ([]repository.NeighborhoodLevel, error) {
	var out []repository.NeighborhoodLevel
	for _, l := range f.levels {
		out = append(out, l)
	}
	return out, nil
}

func (f *fakeRepo) ActiveNeighborhoods(context.Context) ([]repository.Neighborhood, error) {
	return f.neighborhoods, nil
}

func (f *fakeRepo) ActivePackages(context.Context) ([]repository.Package, error) {
	var out []repository.Package
	for _, p := range f.packages {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) ActiveMultipliers(_ context.Context, kind repository.MultiplierKind) ([]repository.Multiplier, error) {
	if kind == repository.InspectionPurpose {
		return f.purposes, nil
	}
	return f.ages, nil
}

func (f *fakeRepo) ActiveRules(context.Context) ([]repository.CalculationRule, error) {
	return f.rules, nil
}

func (f *fakeRepo) GetActiveVat(context.Context) (repository.VatSetting, error) {
	if f.vat == nil {
		return repository.VatSetting{}, apperr.NotFound("no active vat setting")
	}
	return *f.vat, nil
}

type fakeAudit struct {
	entries []audittransport.Entry
}

func (f *fakeAudit) Record(_ context.Context, e audittransport.Entry) {
	f.entries = append(f.entries, e)
}

func newTestService(t *testing.T, repo *fakeRepo) (*Service, *fakeAudit, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	audit := &fakeAudit{}
	svc := New(repo, cache.NewRedisCacheFromClient(client, "test:"), time.Minute, audit, logger.Discard())
	return svc, audit, mr
}

func seedConfig(repo *fakeRepo) (cityID, levelID, packageID uuid.UUID) {
	cityID, levelID, packageID = uuid.New(), uuid.New(), uuid.New()
	repo.cities[cityID] = repository.City{ID: cityID, Name: "Riyadh", IsActive: true}
	repo.levels[levelID] = repository.NeighborhoodLevel{ID: levelID, Code: "A", Name: "Premium", Multiplier: decimal.RequireFromString("1.5"), IsActive: true}
	repo.neighborhoods = []repository.Neighborhood{{
		ID:              uuid.New(),
		CityID:          cityID,
		LevelID:         levelID,
		LevelCode:       "A",
		LevelMultiplier: decimal.RequireFromString("1.5"),
		Name:            "Al Olaya",
		Multiplier:      decimal.NewNullDecimal(decimal.RequireFromString("1.2")),
		ApplyAboveArea:  decimal.NewFromInt(300),
		IsActive:        true,
	}}
	repo.packages[packageID] = repository.Package{
		ID:          packageID,
		Name:        "basic",
		DisplayName: "Basic Inspection",
		BasePrice:   decimal.NewFromInt(500),
		PricingMode: "incremental",
		AreaBasis:   "combined",
		IsActive:    true,
		Tiers: []repository.Tier{
			{Position: 0, MinArea: decimal.Zero, MaxArea: decimal.NewNullDecimal(decimal.NewFromInt(250)), PricePerSqm: decimal.NewFromInt(1)},
			{Position: 1, MinArea: decimal.NewFromInt(250), PricePerSqm: decimal.NewFromInt(2)},
		},
	}
	repo.ages = []repository.Multiplier{{ID: uuid.New(), Key: "new", Multiplier: decimal.NewFromInt(1), IsActive: true}}
	repo.purposes = []repository.Multiplier{{ID: uuid.New(), Key: "purchase", Multiplier: decimal.NewFromInt(1), IsActive: true}}
	repo.rules = []repository.CalculationRule{{ID: uuid.New(), Key: "currency_scale", Value: "2", ValueType: "number", IsActive: true}}
	repo.vat = &repository.VatSetting{ID: uuid.New(), Percentage: decimal.NewFromInt(15), IsActive: true}
	return cityID, levelID, packageID
}

func adminActor() audittransport.Actor {
	id := uuid.New()
	return audittransport.Actor{UserID: &id, IPAddress: "10.0.0.1"}
}

func TestSnapshot_CachesUntilMutation(t *testing.T) {
	repo := newFakeRepo()
	cityID, _, _ := seedConfig(repo)
	svc, audit, mr := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !mr.Exists("test:" + snapshotKey(0)) {
		t.Fatal("expected snapshot to be cached")
	}
	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("cached snapshot: %v", err)
	}
	if repo.snapshotReads != 1 {
		t.Fatalf("expected one database load, got %d", repo.snapshotReads)
	}
	if len(first.Cities) != 1 || !first.VATPercentage.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected snapshot: %#v", first)
	}

	if err := svc.DeleteCity(ctx, adminActor(), cityID); err != nil {
		t.Fatalf("delete city: %v", err)
	}
	if mr.Exists("test:" + snapshotKey(0)) {
		t.Fatal("expected snapshot to be invalidated after delete")
	}

	after, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot after delete: %v", err)
	}
	if len(after.Cities) != 0 {
		t.Fatalf("expected deactivated city to leave the snapshot, got %d", len(after.Cities))
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != audittransport.ActionDelete || audit.entries[0].TableName != tableCities {
		t.Fatalf("unexpected audit entries: %#v", audit.entries)
	}
	if audit.entries[0].OldValues == nil || audit.entries[0].NewValues != nil {
		t.Fatal("expected delete audit to carry old values only")
	}
}

func TestSnapshot_LoadRacingDeleteIsNotServedAfterwards(t *testing.T) {
	repo := newFakeRepo()
	cityID, _, _ := seedConfig(repo)
	svc, _, _ := newTestService(t, repo)
	ctx := context.Background()

	loaded := make(chan struct{})
	release := make(chan struct{})
	repo.citiesRead = func() {
		repo.citiesRead = nil
		close(loaded)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Snapshot(ctx)
		done <- err
	}()

	<-loaded
	if err := svc.DeleteCity(ctx, adminActor(), cityID); err != nil {
		t.Fatalf("delete city: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("racing snapshot: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Cities) != 0 {
		t.Fatalf("expected deleted city to be gone, got %d cities", len(snap.Cities))
	}
}

func TestSnapshot_MissingVatIsInternal(t *testing.T) {
	repo := newFakeRepo()
	seedConfig(repo)
	repo.vat = nil
	svc, _, _ := newTestService(t, repo)

	_, err := svc.Snapshot(context.Background())
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestPricingConfig_IndexesSnapshot(t *testing.T) {
	repo := newFakeRepo()
	cityID, _, packageID := seedConfig(repo)
	svc, _, _ := newTestService(t, repo)

	cfg, err := svc.PricingConfig(context.Background())
	if err != nil {
		t.Fatalf("pricing config: %v", err)
	}
	pkg, ok := cfg.Packages[packageID]
	if !ok {
		t.Fatal("expected package in config")
	}
	if pkg.Name != "Basic Inspection" || len(pkg.Tiers) != 2 || pkg.Tiers[1].MaxArea != nil {
		t.Fatalf("unexpected package: %#v", pkg)
	}
	if cfg.Cities[cityID] != "Riyadh" {
		t.Fatalf("expected city name, got %q", cfg.Cities[cityID])
	}
	for _, n := range cfg.Neighborhoods {
		if !n.EffectiveMultiplier().Equal(decimal.RequireFromString("1.2")) {
			t.Fatalf("expected override multiplier, got %s", n.EffectiveMultiplier())
		}
	}
	if cfg.Rules["currency_scale"] != "2" {
		t.Fatalf("expected rules to carry over, got %#v", cfg.Rules)
	}
}

func TestCreatePackage_RejectsTierGap(t *testing.T) {
	repo := newFakeRepo()
	svc, audit, _ := newTestService(t, repo)
	hundred := decimal.NewFromInt(100)

	_, err := svc.CreatePackage(context.Background(), adminActor(), transport.CreatePackageRequest{
		Name:        "Basic",
		DisplayName: "Basic",
		BasePrice:   decimal.NewFromInt(500),
		Tiers: []transport.TierRequest{
			{MinArea: decimal.Zero, MaxArea: &hundred, PricePerSqm: decimal.NewFromInt(1)},
			{MinArea: decimal.NewFromInt(150), PricePerSqm: decimal.NewFromInt(2)},
		},
	})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	appErr, _ := err.(*apperr.Error)
	details, _ := appErr.Details.([]apperr.FieldError)
	if len(details) == 0 || details[0].Field != "tiers[1].minArea" {
		t.Fatalf("unexpected details: %#v", appErr.Details)
	}
	if len(repo.packages) != 0 || len(audit.entries) != 0 {
		t.Fatal("expected nothing persisted or audited")
	}
}

func TestCreatePackage_NormalizesNameAndDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc, audit, _ := newTestService(t, repo)

	resp, err := svc.CreatePackage(context.Background(), adminActor(), transport.CreatePackageRequest{
		Name:        "  Premium ",
		DisplayName: "Premium",
		BasePrice:   decimal.NewFromInt(900),
		Tiers:       []transport.TierRequest{{MinArea: decimal.Zero, PricePerSqm: decimal.NewFromInt(3)}},
	})
	if err != nil {
		t.Fatalf("create package: %v", err)
	}
	if resp.Name != "premium" || resp.PricingMode != "incremental" || resp.AreaBasis != "combined" || !resp.IsActive {
		t.Fatalf("unexpected package: %#v", resp)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != audittransport.ActionCreate {
		t.Fatalf("expected create audit, got %#v", audit.entries)
	}
}

func TestCreateNeighborhood_UnknownCity(t *testing.T) {
	repo := newFakeRepo()
	_, levelID, _ := seedConfig(repo)
	svc, _, _ := newTestService(t, repo)

	_, err := svc.CreateNeighborhood(context.Background(), adminActor(), transport.CreateNeighborhoodRequest{
		CityID:  uuid.New(),
		LevelID: levelID,
		Name:    "Nowhere",
	})
	appErr, ok := err.(*apperr.Error)
	if !ok || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := appErr.Details.([]apperr.FieldError)
	if len(details) != 1 || details[0].Field != "cityId" {
		t.Fatalf("unexpected details: %#v", appErr.Details)
	}
}

func TestUpdateVat_AuditsPreviousSetting(t *testing.T) {
	repo := newFakeRepo()
	seedConfig(repo)
	svc, audit, mr := newTestService(t, repo)
	ctx := context.Background()

	if _, err := svc.Snapshot(ctx); err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	actor := adminActor()
	resp, err := svc.UpdateVat(ctx, actor, transport.UpdateVatRequest{Percentage: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("update vat: %v", err)
	}
	if !resp.IsActive || !resp.Percentage.Equal(decimal.NewFromInt(5)) || resp.CreatedBy == nil || *resp.CreatedBy != *actor.UserID {
		t.Fatalf("unexpected vat response: %#v", resp)
	}
	if mr.Exists("test:" + snapshotKey(0)) {
		t.Fatal("expected vat change to invalidate the snapshot")
	}
	if len(audit.entries) != 1 || audit.entries[0].TableName != tableVatSettings || audit.entries[0].OldValues == nil {
		t.Fatalf("unexpected audit entries: %#v", audit.entries)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.VATPercentage.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected new vat in snapshot, got %s", snap.VATPercentage)
	}
}

func TestValidateRule(t *testing.T) {
	cases := []struct {
		name    string
		rule    repository.CalculationRule
		wantErr bool
	}{
		{"scale ok", repository.CalculationRule{Key: "currency_scale", Value: "2", ValueType: "number"}, false},
		{"scale beyond stored precision", repository.CalculationRule{Key: "currency_scale", Value: "3", ValueType: "number"}, true},
		{"scale fractional", repository.CalculationRule{Key: "currency_scale", Value: "1.5", ValueType: "number"}, true},
		{"scale too large", repository.CalculationRule{Key: "currency_scale", Value: "7", ValueType: "number"}, true},
		{"min area negative", repository.CalculationRule{Key: "min_total_area", Value: "-1", ValueType: "number"}, true},
		{"max area as string", repository.CalculationRule{Key: "max_total_area", Value: "100", ValueType: "string"}, true},
		{"boolean", repository.CalculationRule{Key: "show_breakdown", Value: "true", ValueType: "boolean"}, false},
		{"bad boolean", repository.CalculationRule{Key: "show_breakdown", Value: "maybe", ValueType: "boolean"}, true},
		{"free text", repository.CalculationRule{Key: "disclaimer", Value: "anything", ValueType: "string"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRule(tc.rule)
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
