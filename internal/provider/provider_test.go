package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockFetcher struct {
	BaseFetcher
	fetchFunc func(ctx context.Context, params QueryParams) (*FetchResult, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, params)
	}
	return &FetchResult{
		Provider:  "mock",
		Model:     m.Model,
		Data:      "data",
		FetchedAt: time.Now(),
	}, nil
}

type mockProvider struct {
	name     string
	fetchers map[ModelType]Fetcher
	initErr  error
}

func newMockProvider(name string, models ...ModelType) *mockProvider {
	p := &mockProvider{name: name, fetchers: make(map[ModelType]Fetcher)}
	for _, m := range models {
		p.fetchers[m] = &mockFetcher{
			BaseFetcher: NewBaseFetcher(m, "mock "+string(m), []string{ParamCorpCode}, nil),
		}
	}
	return p
}

func (p *mockProvider) Info() ProviderInfo {
	return ProviderInfo{Name: p.name, Description: "mock provider", Models: p.SupportedModels()}
}

func (p *mockProvider) Init(credentials map[string]string) error { return p.initErr }

func (p *mockProvider) Fetcher(model ModelType) Fetcher { return p.fetchers[model] }

func (p *mockProvider) SupportedModels() []ModelType {
	models := make([]ModelType, 0, len(p.fetchers))
	for m := range p.fetchers {
		models = append(models, m)
	}
	return models
}

func (p *mockProvider) Ping(ctx context.Context) error { return nil }

// --- Registry tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	p := newMockProvider("dart", ModelCompanySearch)

	if err := r.Register(p, nil); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := r.Get("dart")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "dart" {
		t.Errorf("expected dart, got %s", got.Info().Name)
	}
}

func TestRegistryRegisterInitFailure(t *testing.T) {
	r := NewRegistry()
	p := newMockProvider("broken", ModelCompanySearch)
	p.initErr = errors.New("bad credentials")

	if err := r.Register(p, nil); err == nil {
		t.Fatal("expected Register to propagate Init error")
	}
	if _, err := r.Get("broken"); err == nil {
		t.Error("provider with failed Init must not be registered")
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("absent")

	var nf *ErrProviderNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrProviderNotFound, got %v", err)
	}
	if nf.Name != "absent" {
		t.Errorf("expected name absent, got %s", nf.Name)
	}
}

func TestRegistryFirstProviderBecomesDefault(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(newMockProvider("first", ModelFinancialStatement), nil); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(newMockProvider("second", ModelFinancialStatement), nil); err != nil {
		t.Fatal(err)
	}

	name, ok := r.DefaultProvider(ModelFinancialStatement)
	if !ok || name != "first" {
		t.Errorf("expected first as default, got %q (ok=%v)", name, ok)
	}
}

func TestRegistrySetDefault(t *testing.T) {
	r := NewRegistry()
	r.Register(newMockProvider("a", ModelExecutives), nil)
	r.Register(newMockProvider("b", ModelExecutives), nil)

	if err := r.SetDefault(ModelExecutives, "b"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	if name, _ := r.DefaultProvider(ModelExecutives); name != "b" {
		t.Errorf("expected b as default, got %s", name)
	}

	if err := r.SetDefault(ModelExecutives, "missing"); err == nil {
		t.Error("expected error for unknown provider")
	}
	if err := r.SetDefault(ModelShareholders, "a"); err == nil {
		t.Error("expected error for unsupported model")
	}
}

func TestRegistryFetch(t *testing.T) {
	r := NewRegistry()
	r.Register(newMockProvider("dart", ModelCompanyOverview), nil)

	res, err := r.Fetch(context.Background(), ModelCompanyOverview, QueryParams{
		ParamCorpCode: "00126380",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Data != "data" {
		t.Errorf("unexpected data: %v", res.Data)
	}
}

func TestRegistryFetchMissingRequiredParam(t *testing.T) {
	r := NewRegistry()
	r.Register(newMockProvider("dart", ModelCompanyOverview), nil)

	_, err := r.Fetch(context.Background(), ModelCompanyOverview, QueryParams{})
	var mp *ErrMissingParam
	if !errors.As(err, &mp) {
		t.Fatalf("expected ErrMissingParam, got %v", err)
	}
	if mp.Param != ParamCorpCode {
		t.Errorf("expected %s, got %s", ParamCorpCode, mp.Param)
	}
}

func TestRegistryFetchExplicitProvider(t *testing.T) {
	r := NewRegistry()
	r.Register(newMockProvider("a", ModelDisclosureList), nil)

	other := newMockProvider("b", ModelDisclosureList)
	other.fetchers[ModelDisclosureList] = &mockFetcher{
		BaseFetcher: NewBaseFetcher(ModelDisclosureList, "b list", nil, nil),
		fetchFunc: func(ctx context.Context, params QueryParams) (*FetchResult, error) {
			return &FetchResult{Provider: "b", Model: ModelDisclosureList, Data: "from-b"}, nil
		},
	}
	r.Register(other, nil)

	res, err := r.Fetch(context.Background(), ModelDisclosureList, QueryParams{
		ParamProvider: "b",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if res.Data != "from-b" {
		t.Errorf("expected explicit provider b to serve the request, got %v", res.Data)
	}
}

func TestRegistryFetchNoProviderForModel(t *testing.T) {
	r := NewRegistry()
	_, err := r.Fetch(context.Background(), ModelDocument, QueryParams{})

	var ns *ErrModelNotSupported
	if !errors.As(err, &ns) {
		t.Fatalf("expected ErrModelNotSupported, got %v", err)
	}
}

func TestRegistryModelCoverage(t *testing.T) {
	r := NewRegistry()
	r.Register(newMockProvider("dart", ModelCompanySearch, ModelFinancialStatement), nil)

	coverage := r.ModelCoverage()
	if len(coverage[ModelCompanySearch]) != 1 {
		t.Errorf("expected one provider for CompanySearch, got %v", coverage[ModelCompanySearch])
	}
	if len(coverage[ModelDocument]) != 0 {
		t.Errorf("expected no providers for Document, got %v", coverage[ModelDocument])
	}
}

func TestModelCategory(t *testing.T) {
	tests := []struct {
		model ModelType
		want  string
	}{
		{ModelCompanySearch, "company"},
		{ModelCompanyOverview, "company"},
		{ModelFinancialStatement, "financials"},
		{ModelFinancialTrend, "financials"},
		{ModelDisclosureList, "disclosures"},
		{ModelDisclosureFeed, "disclosures"},
		{ModelMajorReport, "disclosures"},
		{ModelDocument, "disclosures"},
		{ModelExecutives, "ownership"},
		{ModelShareholders, "ownership"},
		{ModelType("Bogus"), "other"},
	}
	for _, tt := range tests {
		if got := ModelCategory(tt.model); got != tt.want {
			t.Errorf("ModelCategory(%s) = %s, want %s", tt.model, got, tt.want)
		}
	}
	// Every catalogued model belongs to a named category.
	for _, m := range AllModels {
		if ModelCategory(m) == "other" {
			t.Errorf("model %s has no category", m)
		}
	}
}

// --- BaseFetcher tests ---

func TestCacheKeyDeterministic(t *testing.T) {
	b := NewBaseFetcher(ModelFinancialStatement, "fs", nil, nil)

	k1 := b.CacheKey(QueryParams{ParamCorpCode: "00126380", ParamBusinessYear: "2023"})
	k2 := b.CacheKey(QueryParams{ParamBusinessYear: "2023", ParamCorpCode: "00126380"})
	if k1 != k2 {
		t.Errorf("cache key must not depend on map order: %q vs %q", k1, k2)
	}
}

func TestCacheKeyExcludesReservedParams(t *testing.T) {
	b := NewBaseFetcher(ModelFinancialStatement, "fs", nil, nil)

	base := b.CacheKey(QueryParams{ParamCorpCode: "00126380"})
	withKey := b.CacheKey(QueryParams{ParamCorpCode: "00126380", ParamAPIKey: "secret", ParamProvider: "dart"})
	if base != withKey {
		t.Errorf("credential override and provider selector must not change the key: %q vs %q", base, withKey)
	}
}

func TestBaseFetcherStoreAndCachedResult(t *testing.T) {
	b := NewBaseFetcher(ModelCompanyOverview, "overview", nil, nil)
	params := QueryParams{ParamCorpCode: "00126380"}

	if _, ok := b.CachedResult(params); ok {
		t.Fatal("expected empty cache")
	}

	b.StoreResult(params, &FetchResult{Provider: "dart", Model: ModelCompanyOverview, Data: "x"})
	res, ok := b.CachedResult(params)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if !res.Cached {
		t.Error("cached result must be marked Cached")
	}
	if res.Data != "x" {
		t.Errorf("unexpected cached data: %v", res.Data)
	}
}

func TestBaseFetcherFailureMemory(t *testing.T) {
	b := NewBaseFetcher(ModelCompanySearch, "search", nil, nil)
	params := QueryParams{ParamQuery: "nothere"}

	if _, ok := b.FailureFor(params); ok {
		t.Fatal("expected no remembered failure")
	}

	b.RememberFailure(params, "no companies matched")
	msg, ok := b.FailureFor(params)
	if !ok {
		t.Fatal("expected remembered failure")
	}
	if msg != "no companies matched" {
		t.Errorf("unexpected failure message: %q", msg)
	}

	// A different query is unaffected.
	if _, ok := b.FailureFor(QueryParams{ParamQuery: "other"}); ok {
		t.Error("failure memory must be per-key")
	}
}

func TestValidateParams(t *testing.T) {
	err := ValidateParams(QueryParams{"a": "1"}, []string{"a", "b"})
	var mp *ErrMissingParam
	if !errors.As(err, &mp) || mp.Param != "b" {
		t.Fatalf("expected missing b, got %v", err)
	}

	if err := ValidateParams(QueryParams{"a": "1", "b": "2"}, []string{"a", "b"}); err != nil {
		t.Errorf("expected valid params, got %v", err)
	}

	// Empty values count as missing.
	if err := ValidateParams(QueryParams{"a": ""}, []string{"a"}); err == nil {
		t.Error("empty value should fail validation")
	}
}
