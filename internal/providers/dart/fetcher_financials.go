package dart

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/pkg/models"
)

// financialsFetcher serves single-year financial statements from
// fnlttSinglAcnt.json (consolidated accounts).
//
// Recent filings lag the calendar: when the requested year has no data,
// up to three earlier years are tried and the year that actually answered
// is reported in the payload. The result is cached under both the
// requested and the answering year so a repeat of either query is a hit.
type financialsFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newFinancialsFetcher(p *DartProvider, search *searchFetcher) *financialsFetcher {
	return &financialsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFinancialStatement,
			"Fetch a company's consolidated financial statement for a business year",
			nil, // corp_code or company_name, validated in Fetch
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamBusinessYear, provider.ParamReportCode},
			24*time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *financialsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "financial statement")
	if err != nil {
		return nil, err
	}
	year, err := normalizeBusinessYear(params[provider.ParamBusinessYear], defaultStatementYear())
	if err != nil {
		return nil, err
	}
	reportCode, err := normalizeReportCode(params[provider.ParamReportCode])
	if err != nil {
		return nil, err
	}

	canonical := f.yearParams(corpCode, year, reportCode)
	if msg, ok := f.FailureFor(canonical); ok {
		return nil, fmt.Errorf("%s", msg)
	}
	if cached, ok := f.CachedResult(canonical); ok {
		return cached, nil
	}

	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	apiKey := params[provider.ParamAPIKey]
	var hardErrs []string
	for _, candidate := range candidateYears(year) {
		stmt, err := f.fetchYear(ctx, apiKey, corpCode, candidate, reportCode)
		if err != nil {
			if isNoData(err) {
				continue
			}
			hardErrs = append(hardErrs, fmt.Sprintf("%s: %v", candidate, err))
			continue
		}

		if candidate != year {
			stmt.RequestedYear = year
		}
		result := &provider.FetchResult{
			Provider:  providerName,
			Model:     provider.ModelFinancialStatement,
			Data:      stmt,
			FetchedAt: time.Now(),
		}
		// Cache under the requested year and the year that answered, so
		// asking for either later is idempotent.
		f.StoreResult(canonical, result)
		if candidate != year {
			f.StoreResult(f.yearParams(corpCode, candidate, reportCode), result)
		}
		return result, nil
	}

	msg := fmt.Sprintf("no financial statement found for %s in %s or recent years", corpCode, year)
	if len(hardErrs) > 0 {
		msg += " (" + strings.Join(hardErrs, "; ") + ")"
	}
	f.RememberFailure(canonical, msg)
	return nil, fmt.Errorf("%s", msg)
}

// yearParams builds the canonical cache-key parameters for one year.
func (f *financialsFetcher) yearParams(corpCode, year, reportCode string) provider.QueryParams {
	return provider.QueryParams{
		provider.ParamCorpCode:     corpCode,
		provider.ParamBusinessYear: year,
		provider.ParamReportCode:   reportCode,
	}
}

// fetchYear requests exactly one business year. A success envelope with an
// empty list is treated the same as the no-data status.
func (f *financialsFetcher) fetchYear(ctx context.Context, apiKey, corpCode, year, reportCode string) (*models.FinancialStatement, error) {
	query := url.Values{}
	query.Set("corp_code", corpCode)
	query.Set("bsns_year", year)
	query.Set("reprt_code", reportCode)
	query.Set("fs_div", "CFS")

	var resp fnlttResponse
	if err := fetchJSON(ctx, "fnlttSinglAcnt.json", apiKey, query, shortTimeout, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.err()
	}
	if len(resp.List) == 0 {
		return nil, &APIError{Status: statusNoData, Message: "no data for " + year}
	}

	accounts := make([]models.FinancialAccount, 0, len(resp.List))
	for _, a := range resp.List {
		accounts = append(accounts, models.FinancialAccount{
			StatementDiv:     a.SjDiv,
			StatementName:    a.SjName,
			AccountName:      a.AccountName,
			ThisTermName:     a.ThstrmName,
			ThisTermAmount:   a.ThstrmAmount,
			PrevTermName:     a.FrmtrmName,
			PrevTermAmount:   a.FrmtrmAmount,
			BeforeTermName:   a.BfefrmtrmName,
			BeforeTermAmount: a.BfefrmtrmAmont,
			Currency:         a.Currency,
			Ordering:         a.Ordering,
		})
	}
	return &models.FinancialStatement{
		CorpCode:     corpCode,
		BusinessYear: year,
		ReportCode:   reportCode,
		Consolidated: true,
		Accounts:     accounts,
	}, nil
}

// isNoData reports whether err is the upstream's soft "no matching data".
func isNoData(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.NoData()
}

// trendFetcher assembles a multi-year financial view by collecting one
// statement per year, most recent first. Years are fetched concurrently
// with a small bound so a wide window does not flood the upstream. It has
// no cache of its own: per-year results share the statement fetcher's
// cache.
type trendFetcher struct {
	provider.BaseFetcher
	provider   *DartProvider
	search     *searchFetcher
	financials *financialsFetcher
}

func newTrendFetcher(p *DartProvider, search *searchFetcher, financials *financialsFetcher) *trendFetcher {
	return &trendFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelFinancialTrend,
			"Collect a company's financial statements across recent years",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamYears, provider.ParamReportCode},
			24*time.Hour, 60, time.Minute,
		),
		provider:   p,
		search:     search,
		financials: financials,
	}
}

func (f *trendFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "financial trend")
	if err != nil {
		return nil, err
	}
	years, err := normalizeYears(params[provider.ParamYears])
	if err != nil {
		return nil, err
	}
	reportCode, err := normalizeReportCode(params[provider.ParamReportCode])
	if err != nil {
		return nil, err
	}

	apiKey := params[provider.ParamAPIKey]
	latest, _ := strconv.Atoi(defaultStatementYear())

	slots := make([]models.YearFinancials, years)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for i := 0; i < years; i++ {
		i := i
		year := strconv.Itoa(latest - i)
		g.Go(func() error {
			slots[i] = f.collectYear(gctx, apiKey, corpCode, year, reportCode)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &provider.FetchResult{
		Provider:  providerName,
		Model:     provider.ModelFinancialTrend,
		Data:      &models.FinancialTrend{CorpCode: corpCode, Years: slots},
		FetchedAt: time.Now(),
	}, nil
}

// collectYear fetches exactly one year for the trend. Unlike the single
// statement lookup there is no fallback: a year without data stays an
// empty slot rather than borrowing a neighbor's figures.
func (f *trendFetcher) collectYear(ctx context.Context, apiKey, corpCode, year, reportCode string) models.YearFinancials {
	canonical := f.financials.yearParams(corpCode, year, reportCode)
	if cached, ok := f.financials.CachedResult(canonical); ok {
		if stmt, ok := cached.Data.(*models.FinancialStatement); ok && stmt.BusinessYear == year {
			return models.YearFinancials{Year: year, Statement: stmt}
		}
	}

	if err := f.Limiter.Wait(ctx); err != nil {
		return models.YearFinancials{Year: year, Error: err.Error()}
	}
	stmt, err := f.financials.fetchYear(ctx, apiKey, corpCode, year, reportCode)
	if err != nil {
		if isNoData(err) {
			return models.YearFinancials{Year: year, Error: "no data filed"}
		}
		return models.YearFinancials{Year: year, Error: err.Error()}
	}

	f.financials.StoreResult(canonical, &provider.FetchResult{
		Provider:  providerName,
		Model:     provider.ModelFinancialStatement,
		Data:      stmt,
		FetchedAt: time.Now(),
	})
	return models.YearFinancials{Year: year, Statement: stmt}
}
