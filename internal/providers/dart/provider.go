// Package dart implements the DART (Data Analysis, Retrieval and Transfer
// System) provider, backed by the Korean Financial Supervisory Service's
// open API at opendart.fss.or.kr.
package dart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dartlens/dartlens/internal/infra"
	"github.com/dartlens/dartlens/internal/provider"
)

const providerName = "dart"

// Upstream endpoints. apiBaseURL and feedURL are package variables so
// tests can point them at a local server.
var (
	apiBaseURL = "https://opendart.fss.or.kr/api"
	feedURL    = "https://dart.fss.or.kr/api/todayRSS.xml"
)

const (
	// Upstream status codes carried in every JSON envelope.
	statusOK     = "000"
	statusNoData = "013"

	// Reporting period codes.
	ReportAnnual    = "11011"
	ReportQuarterly = "11013"

	// Transport policy.
	maxRetries   = 3
	shortTimeout = 30 * time.Second
	longTimeout  = 60 * time.Second // document and dataset downloads

	// Credential plumbing.
	credAPIKey = "api_key"
	// EnvAPIKey is the environment variable holding the DART API key.
	EnvAPIKey = "DART_API_KEY"
)

// DartProvider implements provider.Provider for the DART open API.
type DartProvider struct {
	apiKey   string
	fetchers map[provider.ModelType]provider.Fetcher
}

// New creates an uninitialized DART provider. Fetchers are registered
// during Init.
func New() *DartProvider {
	return &DartProvider{fetchers: make(map[provider.ModelType]provider.Fetcher)}
}

// Info returns the provider metadata.
func (p *DartProvider) Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        providerName,
		Description: "Korean corporate registry and disclosure data from the FSS open API",
		Website:     "https://opendart.fss.or.kr",
		Credentials: []provider.ProviderCredential{
			{
				Name:        credAPIKey,
				Description: "DART open API certification key",
				Required:    false, // resolved per call: override > configured > environment
				EnvVar:      EnvAPIKey,
			},
		},
		Models: p.SupportedModels(),
	}
}

// Init stores credentials and registers all fetchers. A missing key is not
// an error here: each call resolves its own key and fails individually, so
// the keyless feed lookup still works.
func (p *DartProvider) Init(credentials map[string]string) error {
	p.apiKey = credentials[credAPIKey]

	search := newSearchFetcher()
	financials := newFinancialsFetcher(p, search)
	p.register(search)
	p.register(newOverviewFetcher(p, search))
	p.register(financials)
	p.register(newTrendFetcher(p, search, financials))
	p.register(newDisclosureListFetcher(p, search))
	p.register(newFeedFetcher())
	p.register(newMajorReportFetcher(p, search))
	p.register(newDocumentFetcher(p))
	p.register(newExecutivesFetcher(p, search))
	p.register(newShareholdersFetcher(p, search))
	return nil
}

func (p *DartProvider) register(f provider.Fetcher) {
	p.fetchers[f.ModelType()] = &apiKeyInjector{Fetcher: f, provider: p}
}

// Fetcher returns the fetcher for the given model type, or nil.
func (p *DartProvider) Fetcher(model provider.ModelType) provider.Fetcher {
	return p.fetchers[model]
}

// SupportedModels returns all model types this provider serves.
func (p *DartProvider) SupportedModels() []provider.ModelType {
	return []provider.ModelType{
		provider.ModelCompanySearch,
		provider.ModelCompanyOverview,
		provider.ModelFinancialStatement,
		provider.ModelFinancialTrend,
		provider.ModelDisclosureList,
		provider.ModelDisclosureFeed,
		provider.ModelMajorReport,
		provider.ModelDocument,
		provider.ModelExecutives,
		provider.ModelShareholders,
	}
}

// Ping checks connectivity by requesting the public disclosure feed,
// which needs no credentials.
func (p *DartProvider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, feedURL, nil)
	if err != nil {
		return fmt.Errorf("dart ping: %w", err)
	}
	body.Close()
	return nil
}

// ResolveAPIKey picks the effective API key: per-call override first,
// then the configured credential, then the environment.
func (p *DartProvider) ResolveAPIKey(override string) string {
	if override != "" {
		return override
	}
	if p.apiKey != "" {
		return p.apiKey
	}
	return os.Getenv(EnvAPIKey)
}

// apiKeyInjector resolves the API key before delegating to the wrapped
// fetcher. The resolved key travels in the reserved parameter, which is
// excluded from cache keys and never logged.
type apiKeyInjector struct {
	provider.Fetcher
	provider *DartProvider
}

func (i *apiKeyInjector) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	key := i.provider.ResolveAPIKey(params[provider.ParamAPIKey])
	if key != "" {
		// Copy so the caller's map is not mutated.
		withKey := make(provider.QueryParams, len(params)+1)
		for k, v := range params {
			withKey[k] = v
		}
		withKey[provider.ParamAPIKey] = key
		params = withKey
	}
	return i.Fetcher.Fetch(ctx, params)
}

// apiURL builds a full endpoint URL with query parameters and the
// certification key attached.
func apiURL(endpoint, apiKey string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("crtfc_key", apiKey)
	return apiBaseURL + "/" + endpoint + "?" + query.Encode()
}

// fetchJSON performs a GET against an API endpoint and decodes the JSON
// body into out. It requires a resolvable API key and enforces the shared
// retry policy.
func fetchJSON(ctx context.Context, endpoint, apiKey string, query url.Values, timeout time.Duration, out any) error {
	if apiKey == "" {
		return &provider.ErrInvalidCredentials{
			Provider: providerName,
			Detail:   "no API key configured; set " + EnvAPIKey,
		}
	}
	body, err := infra.Fetch(ctx, apiURL(endpoint, apiKey, query), maxRetries, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// MaskKey renders an API key safe for logs: the first characters followed
// by the total length, never the full value.
func MaskKey(key string) string {
	if key == "" {
		return "<empty>"
	}
	prefix := key
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return fmt.Sprintf("%s***(%d chars)", prefix, len(key))
}
