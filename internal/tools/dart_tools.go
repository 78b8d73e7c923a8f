package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/internal/providers/dart"
)

// flexString accepts a JSON string or number. Callers pass years and page
// numbers either way; both forms coerce to the string the fetchers expect.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	if text == "" || text == "null" {
		*s = ""
		return nil
	}
	if text[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", text)
	}
	// Integral floats (2023.0) collapse to their integer form.
	if i, err := n.Int64(); err == nil {
		*s = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	if f, err := n.Float64(); err == nil && f == float64(int64(f)) {
		*s = flexString(strconv.FormatInt(int64(f), 10))
		return nil
	}
	*s = flexString(n.String())
	return nil
}

func (s flexString) String() string { return string(s) }

// envArgs is the optional per-call environment every tool accepts; it
// carries the credential override.
type envArgs struct {
	Env map[string]string `json:"env,omitempty"`
}

func (e envArgs) apply(params provider.QueryParams) {
	if key := e.Env[dart.EnvAPIKey]; key != "" {
		params[provider.ParamAPIKey] = key
	}
}

func setIfPresent(params provider.QueryParams, key, value string) {
	if value != "" {
		params[key] = value
	}
}

// RegisterLookupTools registers one tool per lookup operation plus a
// health check against the given provider registry.
func RegisterLookupTools(tr *ToolRegistry, reg *provider.Registry) {
	companyProps := func() map[string]*JSONSchema {
		return map[string]*JSONSchema{
			"corp_code":    StringProp("8-digit registry code; zero-padded if shorter"),
			"company_name": StringProp("company name; resolved to a registry code when corp_code is absent"),
			"env":          ObjectProp("per-call environment overrides, e.g. DART_API_KEY"),
		}
	}

	tr.Register(&Tool{
		Name:        "search_company",
		Description: "Search the corporate registry for companies whose name contains the query",
		Parameters: ObjectSchema(map[string]*JSONSchema{
			"query": StringProp("name substring, case-insensitive"),
			"env":   ObjectProp("per-call environment overrides, e.g. DART_API_KEY"),
		}, "query"),
		Handler: fetchHandler(reg, provider.ModelCompanySearch, func(a *searchArgs, params provider.QueryParams) {
			setIfPresent(params, provider.ParamQuery, a.Query)
			a.apply(params)
		}),
	})

	tr.Register(&Tool{
		Name:        "get_company_overview",
		Description: "Fetch a company's registered profile (CEO, address, industry, listing)",
		Parameters:  ObjectSchema(companyProps()),
		Handler: fetchHandler(reg, provider.ModelCompanyOverview, func(a *companyArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	finProps := companyProps()
	finProps["bsns_year"] = StringProp("4-digit business year; defaults to the previous year")
	finProps["reprt_code"] = EnumProp("reporting period", dart.ReportAnnual, dart.ReportQuarterly)
	tr.Register(&Tool{
		Name:        "get_financial_statement",
		Description: "Fetch a company's consolidated financial statement, falling back to recent years when the requested one has no filing",
		Parameters:  ObjectSchema(finProps),
		Handler: fetchHandler(reg, provider.ModelFinancialStatement, func(a *financialArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	trendProps := companyProps()
	trendProps["years"] = IntProp("how many recent years to collect (1-10, default 5)")
	trendProps["reprt_code"] = EnumProp("reporting period", dart.ReportAnnual, dart.ReportQuarterly)
	tr.Register(&Tool{
		Name:        "analyze_financial_trend",
		Description: "Collect a company's financial statements across recent years, most recent first",
		Parameters:  ObjectSchema(trendProps),
		Handler: fetchHandler(reg, provider.ModelFinancialTrend, func(a *trendArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	discProps := companyProps()
	discProps["bgn_de"] = StringProp("window start, YYYYMMDD; defaults to 30 days ago")
	discProps["end_de"] = StringProp("window end, YYYYMMDD; defaults to today")
	discProps["page_no"] = IntProp("page number, default 1")
	discProps["page_count"] = IntProp("entries per page, 1-100, default 10")
	tr.Register(&Tool{
		Name:        "get_public_disclosure",
		Description: "List a company's public disclosure filings within a date window",
		Parameters:  ObjectSchema(discProps),
		Handler: fetchHandler(reg, provider.ModelDisclosureList, func(a *disclosureArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	majorProps := companyProps()
	majorProps["bgn_de"] = StringProp("window start, YYYYMMDD; defaults to 30 days ago")
	majorProps["end_de"] = StringProp("window end, YYYYMMDD; defaults to today")
	tr.Register(&Tool{
		Name:        "get_major_report",
		Description: "List a company's key-matter reports (capital changes, mergers) within a date window",
		Parameters:  ObjectSchema(majorProps),
		Handler: fetchHandler(reg, provider.ModelMajorReport, func(a *majorReportArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	tr.Register(&Tool{
		Name:        "download_disclosure_document",
		Description: "Download a filed disclosure document by receipt number, as parsed XML or base64 PDF",
		Parameters: ObjectSchema(map[string]*JSONSchema{
			"rcept_no": StringProp("14-digit disclosure receipt number"),
			"format":   EnumProp("document format", "xml", "pdf"),
			"env":      ObjectProp("per-call environment overrides, e.g. DART_API_KEY"),
		}, "rcept_no"),
		Handler: fetchHandler(reg, provider.ModelDocument, func(a *documentArgs, params provider.QueryParams) {
			setIfPresent(params, provider.ParamReceiptNo, a.ReceiptNo.String())
			setIfPresent(params, provider.ParamFormat, a.Format)
			a.apply(params)
		}),
	})

	execProps := companyProps()
	execProps["bsns_year"] = StringProp("4-digit business year; defaults by reporting calendar")
	execProps["reprt_code"] = EnumProp("reporting period", dart.ReportAnnual, dart.ReportQuarterly)
	tr.Register(&Tool{
		Name:        "get_executives",
		Description: "Fetch a company's registered executives for a business year",
		Parameters:  ObjectSchema(execProps),
		Handler: fetchHandler(reg, provider.ModelExecutives, func(a *financialArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	shareProps := companyProps()
	shareProps["bsns_year"] = StringProp("4-digit business year; defaults to the previous year")
	tr.Register(&Tool{
		Name:        "get_shareholders",
		Description: "Fetch a company's major shareholder reports",
		Parameters:  ObjectSchema(shareProps),
		Handler: fetchHandler(reg, provider.ModelShareholders, func(a *financialArgs, params provider.QueryParams) {
			a.fill(params)
		}),
	})

	tr.Register(&Tool{
		Name:        "get_disclosure_feed",
		Description: "Fetch the real-time public disclosure feed (no credentials required)",
		Parameters:  ObjectSchema(map[string]*JSONSchema{}),
		Handler: fetchHandler(reg, provider.ModelDisclosureFeed, func(a *envArgs, params provider.QueryParams) {
			a.apply(params)
		}),
	})

	tr.Register(&Tool{
		Name:        "health",
		Description: "Report credential status and provider coverage",
		Parameters:  ObjectSchema(map[string]*JSONSchema{}),
		Handler: func(ctx context.Context, args json.RawMessage) (string, error) {
			return healthReport(reg)
		},
	})
}

// --- argument structs ---

type searchArgs struct {
	envArgs
	Query string `json:"query"`
}

type companyArgs struct {
	envArgs
	CorpCode    flexString `json:"corp_code"`
	CompanyName string     `json:"company_name"`
}

func (a *companyArgs) fill(params provider.QueryParams) {
	setIfPresent(params, provider.ParamCorpCode, a.CorpCode.String())
	setIfPresent(params, provider.ParamCompanyName, a.CompanyName)
	a.apply(params)
}

type financialArgs struct {
	companyArgs
	BusinessYear flexString `json:"bsns_year"`
	ReportCode   flexString `json:"reprt_code"`
}

func (a *financialArgs) fill(params provider.QueryParams) {
	a.companyArgs.fill(params)
	setIfPresent(params, provider.ParamBusinessYear, a.BusinessYear.String())
	setIfPresent(params, provider.ParamReportCode, a.ReportCode.String())
}

type trendArgs struct {
	companyArgs
	Years      flexString `json:"years"`
	ReportCode flexString `json:"reprt_code"`
}

func (a *trendArgs) fill(params provider.QueryParams) {
	a.companyArgs.fill(params)
	setIfPresent(params, provider.ParamYears, a.Years.String())
	setIfPresent(params, provider.ParamReportCode, a.ReportCode.String())
}

type disclosureArgs struct {
	companyArgs
	BeginDate flexString `json:"bgn_de"`
	EndDate   flexString `json:"end_de"`
	PageNo    flexString `json:"page_no"`
	PageCount flexString `json:"page_count"`
}

func (a *disclosureArgs) fill(params provider.QueryParams) {
	a.companyArgs.fill(params)
	setIfPresent(params, provider.ParamBeginDate, a.BeginDate.String())
	setIfPresent(params, provider.ParamEndDate, a.EndDate.String())
	setIfPresent(params, provider.ParamPageNo, a.PageNo.String())
	setIfPresent(params, provider.ParamPageCount, a.PageCount.String())
}

type majorReportArgs struct {
	companyArgs
	BeginDate flexString `json:"bgn_de"`
	EndDate   flexString `json:"end_de"`
}

func (a *majorReportArgs) fill(params provider.QueryParams) {
	a.companyArgs.fill(params)
	setIfPresent(params, provider.ParamBeginDate, a.BeginDate.String())
	setIfPresent(params, provider.ParamEndDate, a.EndDate.String())
}

type documentArgs struct {
	envArgs
	ReceiptNo flexString `json:"rcept_no"`
	Format    string     `json:"format"`
}

// fetchHandler builds a ToolHandler that decodes arguments into A, maps
// them onto query parameters, and serializes the fetch result's payload.
func fetchHandler[A any](reg *provider.Registry, model provider.ModelType, fill func(*A, provider.QueryParams)) ToolHandler {
	return func(ctx context.Context, args json.RawMessage) (string, error) {
		var a A
		if err := json.Unmarshal(args, &a); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
		params := provider.QueryParams{}
		fill(&a, params)

		res, err := reg.Fetch(ctx, model, params)
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(res.Data)
		if err != nil {
			return "", fmt.Errorf("serialize result: %w", err)
		}
		return string(out), nil
	}
}

// healthReport summarizes credential status (masked, never the raw key)
// and which models each provider covers.
func healthReport(reg *provider.Registry) (string, error) {
	type providerHealth struct {
		Name      string   `json:"name"`
		KeyStatus string   `json:"key_status"`
		Models    []string `json:"models"`
	}
	report := struct {
		Status    string           `json:"status"`
		Providers []providerHealth `json:"providers"`
	}{Status: "ok"}

	for _, info := range reg.List() {
		h := providerHealth{Name: info.Name}
		for _, m := range info.Models {
			h.Models = append(h.Models, string(m))
		}
		if info.Name == "dart" {
			if p, err := reg.Get("dart"); err == nil {
				if dp, ok := p.(*dart.DartProvider); ok {
					h.KeyStatus = dart.MaskKey(dp.ResolveAPIKey(""))
				}
			}
		}
		report.Providers = append(report.Providers, h)
	}

	out, err := json.Marshal(report)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
