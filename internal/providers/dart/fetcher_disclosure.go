package dart

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dartlens/dartlens/internal/infra"
	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/pkg/models"
)

// disclosureListFetcher serves paged filing lists from list.json.
// Disclosures arrive throughout the day, so successes live one hour.
type disclosureListFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newDisclosureListFetcher(p *DartProvider, search *searchFetcher) *disclosureListFetcher {
	return &disclosureListFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelDisclosureList,
			"List a company's public disclosure filings within a date window",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamBeginDate,
				provider.ParamEndDate, provider.ParamPageNo, provider.ParamPageCount},
			time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *disclosureListFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "public disclosure")
	if err != nil {
		return nil, err
	}
	begin, end, err := normalizeDateRange(params[provider.ParamBeginDate], params[provider.ParamEndDate])
	if err != nil {
		return nil, err
	}
	pageNo, pageCount, err := normalizePaging(params[provider.ParamPageNo], params[provider.ParamPageCount])
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{
		provider.ParamCorpCode:  corpCode,
		provider.ParamBeginDate: begin,
		provider.ParamEndDate:   end,
		provider.ParamPageNo:    strconv.Itoa(pageNo),
		provider.ParamPageCount: strconv.Itoa(pageCount),
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

	query := url.Values{}
	query.Set("corp_code", corpCode)
	query.Set("bgn_de", begin)
	query.Set("end_de", end)
	query.Set("page_no", strconv.Itoa(pageNo))
	query.Set("page_count", strconv.Itoa(pageCount))

	var resp listResponse
	if err := fetchJSON(ctx, "list.json", params[provider.ParamAPIKey], query, shortTimeout, &resp); err != nil {
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}
	if !resp.ok() {
		// Unlike the period-sensitive lookups there is no candidate loop
		// here: any non-success status, "013" included, is a failure.
		err := resp.err()
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}

	disclosures := make([]models.Disclosure, 0, len(resp.List))
	for _, d := range resp.List {
		disclosures = append(disclosures, models.Disclosure{
			CorpCode:    d.CorpCode,
			CorpName:    d.CorpName,
			StockCode:   d.StockCode,
			CorpClass:   d.CorpClass,
			ReportName:  d.ReportNm,
			ReceiptNo:   d.RceptNo,
			FilerName:   d.FlrName,
			ReceiptDate: d.RceptDate,
			Remark:      d.Remark,
		})
	}
	return f.store(canonical, &models.DisclosureList{
		CorpCode:    corpCode,
		BeginDate:   begin,
		EndDate:     end,
		PageNo:      resp.PageNo,
		PageCount:   resp.PageCount,
		TotalCount:  resp.TotalCount,
		TotalPage:   resp.TotalPage,
		Disclosures: disclosures,
	}), nil
}

func (f *disclosureListFetcher) store(canonical provider.QueryParams, list *models.DisclosureList) *provider.FetchResult {
	result := &provider.FetchResult{
		Provider:  providerName,
		Model:     provider.ModelDisclosureList,
		Data:      list,
		FetchedAt: time.Now(),
	}
	f.StoreResult(canonical, result)
	return result
}

// majorReportFetcher serves key-matter reports from majorReport.json.
type majorReportFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
	search   *searchFetcher
}

func newMajorReportFetcher(p *DartProvider, search *searchFetcher) *majorReportFetcher {
	return &majorReportFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelMajorReport,
			"List a company's key-matter reports within a date window",
			nil,
			[]string{provider.ParamCorpCode, provider.ParamCompanyName, provider.ParamBeginDate, provider.ParamEndDate},
			24*time.Hour, 60, time.Minute,
		),
		provider: p,
		search:   search,
	}
}

func (f *majorReportFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	corpCode, err := resolveCorpCode(ctx, f.search, params, "major report")
	if err != nil {
		return nil, err
	}
	begin, end, err := normalizeDateRange(params[provider.ParamBeginDate], params[provider.ParamEndDate])
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{
		provider.ParamCorpCode:  corpCode,
		provider.ParamBeginDate: begin,
		provider.ParamEndDate:   end,
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

	query := url.Values{}
	query.Set("corp_code", corpCode)
	query.Set("bgn_de", begin)
	query.Set("end_de", end)

	var resp majorReportResponse
	if err := fetchJSON(ctx, "majorReport.json", params[provider.ParamAPIKey], query, shortTimeout, &resp); err != nil {
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}
	if !resp.ok() {
		err := resp.err()
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}

	reports := make([]models.MajorReport, 0, len(resp.List))
	for _, r := range resp.List {
		reports = append(reports, models.MajorReport{
			CorpCode:    r.CorpCode,
			CorpName:    r.CorpName,
			ReceiptNo:   r.RceptNo,
			ReceiptDate: r.RceptDate,
			ReportName:  r.ReportNm,
			Remark:      r.Remark,
		})
	}
	result := &provider.FetchResult{
		Provider: providerName,
		Model:    provider.ModelMajorReport,
		Data: &models.MajorReportList{
			CorpCode:  corpCode,
			BeginDate: begin,
			EndDate:   end,
			Reports:   reports,
		},
		FetchedAt: time.Now(),
	}
	f.StoreResult(canonical, result)
	return result, nil
}

// feedFetcher serves the public real-time disclosure feed. The feed needs
// no credentials and refreshes every few minutes, so successes live only
// ten minutes.
type feedFetcher struct {
	provider.BaseFetcher
}

func newFeedFetcher() *feedFetcher {
	return &feedFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelDisclosureFeed,
			"Fetch the real-time public disclosure feed",
			nil, nil,
			10*time.Minute, 60, time.Minute,
		),
	}
}

func (f *feedFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	canonical := provider.QueryParams{}
	if msg, ok := f.FailureFor(canonical); ok {
		return nil, fmt.Errorf("%s", msg)
	}
	if cached, ok := f.CachedResult(canonical); ok {
		return cached, nil
	}

	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := infra.DoGet(ctx, feedURL, map[string]string{"Accept": "application/rss+xml"})
	if err != nil {
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		err = fmt.Errorf("parse disclosure feed: %w", err)
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		fi := models.FeedItem{
			Title:       item.Title,
			Link:        item.Link,
			GUID:        item.GUID,
			Description: item.Description,
		}
		if item.PublishedParsed != nil {
			fi.Published = item.PublishedParsed.Format(time.RFC3339)
		} else {
			fi.Published = item.Published
		}
		items = append(items, fi)
	}
	result := &provider.FetchResult{
		Provider: providerName,
		Model:    provider.ModelDisclosureFeed,
		Data: &models.DisclosureFeed{
			Title:   feed.Title,
			Updated: feed.Updated,
			Items:   items,
		},
		FetchedAt: time.Now(),
	}
	f.StoreResult(canonical, result)
	return result, nil
}
