// Package provider implements the data-provider abstraction layer.
// It defines a Provider interface, a Fetcher interface, and a central
// registry that routes lookup requests to the appropriate provider based
// on model type.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a credential a provider can use.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // human-readable description
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name, e.g., "DART_API_KEY"
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Models      []ModelType          `json:"models"`
}

// Provider is the interface that all data providers must implement.
// Each provider registers one or more Fetcher implementations for specific
// lookup model types (e.g., CompanySearch, FinancialStatement).
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init initializes the provider with credentials and configuration.
	// Called once during registration.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given model type, or nil if unsupported.
	Fetcher(model ModelType) Fetcher

	// SupportedModels returns all model types this provider can fetch.
	SupportedModels() []ModelType

	// Ping verifies the provider's connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
// Keys starting with "_" are reserved for internal plumbing (per-call
// credential overrides) and are excluded from cache keys.
type QueryParams map[string]string

// Query parameter keys shared across fetchers.
const (
	ParamCorpCode     = "corp_code"    // canonical 8-digit company identifier
	ParamCompanyName  = "company_name" // free-text name, resolved to corp_code
	ParamQuery        = "query"        // substring for company search
	ParamBusinessYear = "bsns_year"    // 4-digit business year
	ParamReportCode   = "reprt_code"   // reporting period code (annual/quarterly)
	ParamBeginDate    = "bgn_de"       // YYYYMMDD range start
	ParamEndDate      = "end_de"       // YYYYMMDD range end
	ParamPageNo       = "page_no"
	ParamPageCount    = "page_count"
	ParamYears        = "years"    // trend window size
	ParamReceiptNo    = "rcept_no" // disclosure receipt number
	ParamFormat       = "format"   // document format: xml or pdf
	ParamProvider     = "provider" // provider override
	ParamAPIKey       = "_api_key" // per-call credential override, never cached or logged
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`
	Model     ModelType `json:"model"`
	Data      any       `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// Fetcher is the interface for one lookup operation.
type Fetcher interface {
	// ModelType returns the lookup model type this fetcher handles.
	ModelType() ModelType

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrModelNotSupported is returned when a provider doesn't support a model type.
type ErrModelNotSupported struct {
	Provider string
	Model    ModelType
}

func (e *ErrModelNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support model %q", e.Provider, e.Model)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
