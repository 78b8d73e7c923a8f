package tools

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dartlens/dartlens/internal/provider"
)

// stubProvider records the params each fetch received and returns canned
// data, standing in for the real upstream-backed provider.
type stubProvider struct {
	name     string
	captured map[provider.ModelType]provider.QueryParams
	data     map[provider.ModelType]any
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		name:     "dart",
		captured: make(map[provider.ModelType]provider.QueryParams),
		data:     make(map[provider.ModelType]any),
	}
}

type stubFetcher struct {
	provider.BaseFetcher
	p *stubProvider
}

func (f *stubFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	f.p.captured[f.Model] = params
	data := f.p.data[f.Model]
	if data == nil {
		data = map[string]string{"model": string(f.Model)}
	}
	return &provider.FetchResult{
		Provider:  f.p.name,
		Model:     f.Model,
		Data:      data,
		FetchedAt: time.Now(),
	}, nil
}

func (p *stubProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{Name: p.name, Models: p.SupportedModels()}
}
func (p *stubProvider) Init(map[string]string) error { return nil }
func (p *stubProvider) Fetcher(model provider.ModelType) provider.Fetcher {
	return &stubFetcher{BaseFetcher: provider.NewBaseFetcher(model, "stub", nil, nil), p: p}
}
func (p *stubProvider) SupportedModels() []provider.ModelType { return provider.AllModels }
func (p *stubProvider) Ping(context.Context) error            { return nil }

func newTestRegistry(t *testing.T) (*ToolRegistry, *stubProvider) {
	t.Helper()
	stub := newStubProvider()
	reg := provider.NewRegistry()
	if err := reg.Register(stub, nil); err != nil {
		t.Fatalf("register stub: %v", err)
	}
	tr := NewToolRegistry()
	RegisterLookupTools(tr, reg)
	return tr, stub
}

func TestAllToolsRegistered(t *testing.T) {
	tr, _ := newTestRegistry(t)

	want := []string{
		"analyze_financial_trend", "download_disclosure_document",
		"get_company_overview", "get_disclosure_feed", "get_executives",
		"get_financial_statement", "get_major_report", "get_public_disclosure",
		"get_shareholders", "health", "search_company",
	}
	list := tr.List()
	if len(list) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(list))
	}
	for i, tool := range list {
		if tool.Name != want[i] {
			t.Errorf("tool %d: expected %s, got %s", i, want[i], tool.Name)
		}
		if tool.Parameters == nil || tool.Parameters.Type != "object" {
			t.Errorf("tool %s must carry an object schema", tool.Name)
		}
	}
}

func TestSearchToolMapsQuery(t *testing.T) {
	tr, stub := newTestRegistry(t)

	out, err := tr.Execute(context.Background(), "search_company", json.RawMessage(`{"query":"sample"}`))
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "CompanySearch") {
		t.Errorf("unexpected output: %s", out)
	}
	params := stub.captured[provider.ModelCompanySearch]
	if params[provider.ParamQuery] != "sample" {
		t.Errorf("query not mapped: %v", params)
	}
}

func TestNumericArgumentsCoerce(t *testing.T) {
	tr, stub := newTestRegistry(t)

	args := `{"corp_code":126380,"bsns_year":2023,"reprt_code":"11011"}`
	if _, err := tr.Execute(context.Background(), "get_financial_statement", json.RawMessage(args)); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	params := stub.captured[provider.ModelFinancialStatement]
	if params[provider.ParamCorpCode] != "126380" {
		t.Errorf("numeric corp_code not coerced: %v", params)
	}
	if params[provider.ParamBusinessYear] != "2023" {
		t.Errorf("numeric year not coerced: %v", params)
	}
}

func TestNullAndFloatArguments(t *testing.T) {
	tr, stub := newTestRegistry(t)

	args := `{"corp_code":"126380","bsns_year":2023.0,"reprt_code":null}`
	if _, err := tr.Execute(context.Background(), "get_financial_statement", json.RawMessage(args)); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	params := stub.captured[provider.ModelFinancialStatement]
	if params[provider.ParamBusinessYear] != "2023" {
		t.Errorf("integral float not collapsed: %v", params)
	}
	if _, ok := params[provider.ParamReportCode]; ok {
		t.Errorf("null argument must be omitted: %v", params)
	}
}

func TestEnvOverridePassesThrough(t *testing.T) {
	tr, stub := newTestRegistry(t)

	args := `{"corp_code":"126380","env":{"DART_API_KEY":"override-key"}}`
	if _, err := tr.Execute(context.Background(), "get_company_overview", json.RawMessage(args)); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	params := stub.captured[provider.ModelCompanyOverview]
	if params[provider.ParamAPIKey] != "override-key" {
		t.Errorf("env override not propagated: %v", params)
	}
}

func TestDisclosurePagingArguments(t *testing.T) {
	tr, stub := newTestRegistry(t)

	args := `{"company_name":"SampleCorp","bgn_de":"20240101","end_de":"20240201","page_no":2,"page_count":"50"}`
	if _, err := tr.Execute(context.Background(), "get_public_disclosure", json.RawMessage(args)); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	params := stub.captured[provider.ModelDisclosureList]
	if params[provider.ParamPageNo] != "2" || params[provider.ParamPageCount] != "50" {
		t.Errorf("paging not mapped: %v", params)
	}
	if params[provider.ParamCompanyName] != "SampleCorp" {
		t.Errorf("company_name not mapped: %v", params)
	}
}

func TestUnknownToolFails(t *testing.T) {
	tr, _ := newTestRegistry(t)
	if _, err := tr.Execute(context.Background(), "no_such_tool", nil); err == nil {
		t.Fatal("expected error for unknown tool")
	}
}

func TestInvalidArgumentsFail(t *testing.T) {
	tr, _ := newTestRegistry(t)
	_, err := tr.Execute(context.Background(), "search_company", json.RawMessage(`{"query":`))
	if err == nil {
		t.Fatal("expected error for malformed arguments")
	}
}

func TestEmptyArgumentsDefaultToEmptyObject(t *testing.T) {
	tr, _ := newTestRegistry(t)
	if _, err := tr.Execute(context.Background(), "get_disclosure_feed", nil); err != nil {
		t.Fatalf("nil arguments should behave like {}: %v", err)
	}
}

func TestExecuteAllNeverAborts(t *testing.T) {
	tr, _ := newTestRegistry(t)

	results := tr.ExecuteAll(context.Background(), []ToolCall{
		{ID: "1", Name: "no_such_tool", Arguments: json.RawMessage(`{}`)},
		{ID: "2", Name: "search_company", Arguments: json.RawMessage(`{"query":"x"}`)},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].IsError {
		t.Error("first call should have failed")
	}
	if results[1].IsError {
		t.Errorf("second call should have succeeded: %s", results[1].Content)
	}
}

func TestHealthNeverLeaksKey(t *testing.T) {
	tr, _ := newTestRegistry(t)
	t.Setenv("DART_API_KEY", "topsecretapikey0123456789")

	out, err := tr.Execute(context.Background(), "health", nil)
	if err != nil {
		t.Fatalf("health failed: %v", err)
	}
	if strings.Contains(out, "topsecretapikey0123456789") {
		t.Errorf("health output must never contain the raw key: %s", out)
	}
}
