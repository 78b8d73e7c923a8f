package provider

import (
	"sort"
	"strings"
	"time"

	"github.com/dartlens/dartlens/internal/infra"
)

// FailureTTL is how long a failed lookup is remembered. A remembered
// failure is replayed without contacting the upstream, so a misbehaving
// endpoint is not hammered by repeated identical requests.
const FailureTTL = 5 * time.Minute

// BaseFetcher provides common fetcher functionality: success caching,
// negative (failure) caching, and rate limiting. Concrete fetchers embed
// it and implement Fetch.
type BaseFetcher struct {
	Model    ModelType
	Desc     string
	Required []string
	Optional []string

	Cache    *infra.Cache
	Failures *infra.Cache
	Limiter  *infra.RateLimiter
}

// NewBaseFetcher creates a BaseFetcher with sensible defaults:
// 15-minute success cache and 60 requests per minute.
func NewBaseFetcher(model ModelType, desc string, required, optional []string) BaseFetcher {
	return NewBaseFetcherWithOpts(model, desc, required, optional, 15*time.Minute, 60, time.Minute)
}

// NewBaseFetcherWithOpts creates a BaseFetcher with explicit cache TTL and
// rate limit settings.
func NewBaseFetcherWithOpts(model ModelType, desc string, required, optional []string,
	cacheTTL time.Duration, rateLimit int, rateWindow time.Duration) BaseFetcher {
	return BaseFetcher{
		Model:    model,
		Desc:     desc,
		Required: required,
		Optional: optional,
		Cache:    infra.NewCache(cacheTTL),
		Failures: infra.NewCache(FailureTTL),
		Limiter:  infra.NewRateLimiter(rateLimit, rateWindow),
	}
}

// ModelType returns the model type this fetcher handles.
func (b *BaseFetcher) ModelType() ModelType { return b.Model }

// Description returns the fetcher description.
func (b *BaseFetcher) Description() string { return b.Desc }

// RequiredParams returns the required parameter keys.
func (b *BaseFetcher) RequiredParams() []string { return b.Required }

// OptionalParams returns the optional parameter keys.
func (b *BaseFetcher) OptionalParams() []string { return b.Optional }

// CacheKey builds a deterministic cache key from the model type and query
// parameters. Reserved keys (leading underscore) and the provider selector
// never participate, so a per-call credential override hits the same entry.
func (b *BaseFetcher) CacheKey(params QueryParams) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.HasPrefix(k, "_") || k == ParamProvider {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(string(b.Model))
	for _, k := range keys {
		sb.WriteByte('|')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(params[k])
	}
	return sb.String()
}

// CachedResult returns a previously stored result for params, if present.
func (b *BaseFetcher) CachedResult(params QueryParams) (*FetchResult, bool) {
	if cached, ok := b.Cache.Get(b.CacheKey(params)); ok {
		if res, ok := cached.(*FetchResult); ok {
			copied := *res
			copied.Cached = true
			return &copied, true
		}
	}
	return nil, false
}

// FailureFor returns the remembered failure message for params, if any.
func (b *BaseFetcher) FailureFor(params QueryParams) (string, bool) {
	if v, ok := b.Failures.Get(b.CacheKey(params)); ok {
		if msg, ok := v.(string); ok {
			return msg, true
		}
	}
	return "", false
}

// RememberFailure records a failure message for params for FailureTTL.
func (b *BaseFetcher) RememberFailure(params QueryParams, msg string) {
	b.Failures.Set(b.CacheKey(params), msg)
}

// StoreResult caches a successful result under the key for params.
func (b *BaseFetcher) StoreResult(params QueryParams, res *FetchResult) {
	b.Cache.Set(b.CacheKey(params), res)
}
