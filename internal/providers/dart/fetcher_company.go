package dart

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/pkg/models"
)

// overviewFetcher serves registered company profiles from company.json.
// Profiles change rarely, so successes live for a week.
type overviewFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newOverviewFetcher(p *DartProvider, search *searchFetcher) *overviewFetcher {
	return &overviewFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanyOverview,
			"Fetch a company's registered profile",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName},
			7*24*time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *overviewFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "company overview")
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{provider.ParamCorpCode: corpCode}
	if msg, ok := f.FailureFor(canonical); ok {
		return nil, fmt.Errorf("%s", msg)
	}
	if cached, ok := f.CachedResult(canonical); ok {
		return cached, nil
	}

	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("corp_code", corpCode)
	var resp companyResponse
	if err := fetchJSON(ctx, "company.json", params[provider.ParamAPIKey], query, shortTimeout, &resp); err != nil {
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}
	if !resp.ok() {
		err := resp.err()
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}

	result := &provider.FetchResult{
		Provider: providerName,
		Model:    provider.ModelCompanyOverview,
		Data: &models.CompanyOverview{
			CorpCode:       corpCode,
			CorpName:       resp.CorpName,
			CorpNameEng:    resp.CorpNameEng,
			StockName:      resp.StockName,
			StockCode:      resp.StockCode,
			CEOName:        resp.CEOName,
			CorpClass:      resp.CorpClass,
			JurisdictionNo: resp.JurirNo,
			BusinessNo:     resp.BizrNo,
			Address:        resp.Address,
			HomepageURL:    resp.HomeURL,
			IRURL:          resp.IRURL,
			PhoneNo:        resp.PhoneNo,
			FaxNo:          resp.FaxNo,
			IndustryCode:   resp.IndustyCode,
			EstablishedOn:  resp.EstDate,
			FiscalMonth:    resp.AccMonth,
		},
		FetchedAt: time.Now(),
	}
	f.StoreResult(canonical, result)
	return result, nil
}

// executivesFetcher serves registered-officer filings from empSttus.json.
// Filings follow the reporting calendar, so the lookup is period-sensitive
// with the same candidate-year fallback as financial statements.
type executivesFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newExecutivesFetcher(p *DartProvider, search *searchFetcher) *executivesFetcher {
	return &executivesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelExecutives,
			"Fetch a company's registered executives for a business year",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamBusinessYear, provider.ParamReportCode},
			7*24*time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *executivesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "executives")
	if err != nil {
		return nil, err
	}
	year, err := normalizeBusinessYear(params[provider.ParamBusinessYear], defaultExecutivesYear())
	if err != nil {
		return nil, err
	}
	reportCode, err := normalizeReportCode(params[provider.ParamReportCode])
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{
		provider.ParamCorpCode:     corpCode,
		provider.ParamBusinessYear: year,
		provider.ParamReportCode:   reportCode,
	}
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
	var lastErr error
	for _, candidate := range candidateYears(year) {
		list, err := f.fetchYear(ctx, apiKey, corpCode, candidate, reportCode)
		if err != nil {
			if !isNoData(err) {
				lastErr = err
			}
			continue
		}

		result := &provider.FetchResult{
			Provider:  providerName,
			Model:     provider.ModelExecutives,
			Data:      list,
			FetchedAt: time.Now(),
		}
		f.StoreResult(canonical, result)
		return result, nil
	}

	msg := fmt.Sprintf("no executive filing found for %s in %s or recent years", corpCode, year)
	if lastErr != nil {
		msg += ": " + lastErr.Error()
	}
	f.RememberFailure(canonical, msg)
	return nil, fmt.Errorf("%s", msg)
}

func (f *executivesFetcher) fetchYear(ctx context.Context, apiKey, corpCode, year, reportCode string) (*models.ExecutiveList, error) {
	query := url.Values{}
	query.Set("corp_code", corpCode)
	query.Set("bsns_year", year)
	query.Set("reprt_code", reportCode)

	var resp executiveResponse
	if err := fetchJSON(ctx, "empSttus.json", apiKey, query, shortTimeout, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.err()
	}
	if len(resp.List) == 0 {
		return nil, &APIError{Status: statusNoData, Message: "no data for " + year}
	}

	executives := make([]models.Executive, 0, len(resp.List))
	for _, e := range resp.List {
		executives = append(executives, models.Executive{
			Name:          e.Name,
			Sex:           e.Sex,
			BirthYearMon:  e.BirthYM,
			Position:      e.Position,
			Registered:    e.Registered,
			FullTime:      e.FullTime,
			Charge:        e.Charge,
			MainCareer:    e.MainCareer,
			TenureEndDate: e.TenureEndOn,
		})
	}
	return &models.ExecutiveList{
		CorpCode:     corpCode,
		BusinessYear: year,
		ReportCode:   reportCode,
		Executives:   executives,
	}, nil
}

// shareholdersFetcher serves large-holding reports from majorstock.json,
// period-sensitive like the other filing lookups.
type shareholdersFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newShareholdersFetcher(p *DartProvider, search *searchFetcher) *shareholdersFetcher {
	return &shareholdersFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelShareholders,
			"Fetch a company's major shareholder reports",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamBusinessYear},
			24*time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *shareholdersFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "shareholders")
	if err != nil {
		return nil, err
	}
	year, err := normalizeBusinessYear(params[provider.ParamBusinessYear], defaultStatementYear())
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{
		provider.ParamCorpCode:     corpCode,
		provider.ParamBusinessYear: year,
	}
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
	var lastErr error
	for _, candidate := range candidateYears(year) {
		list, err := f.fetchYear(ctx, apiKey, corpCode, candidate)
		if err != nil {
			if !isNoData(err) {
				lastErr = err
			}
			continue
		}

		result := &provider.FetchResult{
			Provider:  providerName,
			Model:     provider.ModelShareholders,
			Data:      list,
			FetchedAt: time.Now(),
		}
		f.StoreResult(canonical, result)
		return result, nil
	}

	msg := fmt.Sprintf("no shareholder report found for %s in %s or recent years", corpCode, year)
	if lastErr != nil {
		msg += ": " + lastErr.Error()
	}
	f.RememberFailure(canonical, msg)
	return nil, fmt.Errorf("%s", msg)
}

func (f *shareholdersFetcher) fetchYear(ctx context.Context, apiKey, corpCode, year string) (*models.ShareholderList, error) {
	query := url.Values{}
	query.Set("corp_code", corpCode)
	query.Set("bsns_year", year)

	var resp majorstockResponse
	if err := fetchJSON(ctx, "majorstock.json", apiKey, query, shortTimeout, &resp); err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.err()
	}
	if len(resp.List) == 0 {
		return nil, &APIError{Status: statusNoData, Message: "no data for " + year}
	}

	shareholders := make([]models.Shareholder, 0, len(resp.List))
	for _, s := range resp.List {
		shareholders = append(shareholders, models.Shareholder{
			ReceiptNo:    s.RceptNo,
			ReceiptDate:  s.RceptDate,
			CorpName:     s.CorpName,
			Reporter:     s.Reporter,
			StockCount:   s.StockCount,
			StockChange:  s.StockChange,
			HoldingRatio: s.StockRatio,
			RatioChange:  s.RatioChange,
			ReportReason: s.ReportResn,
		})
	}
	return &models.ShareholderList{CorpCode: corpCode, Shareholders: shareholders}, nil
}
