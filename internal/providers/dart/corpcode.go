package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/dartlens/dartlens/internal/infra"
	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/pkg/models"
)

// datasetKey is the cache key for the full registry dataset. The dataset
// is identical for every caller, so one entry serves all queries.
const datasetKey = "corpcode-dataset"

// searchFetcher serves company name searches against the registry dataset
// (corpCode.xml), a ZIP-compressed XML file listing every registered
// company. The parsed dataset is cached for 24 hours; individual search
// results are cached under their query.
type searchFetcher struct {
	provider.BaseFetcher
	dataset *infra.Cache
}

func newSearchFetcher() *searchFetcher {
	return &searchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCompanySearch,
			"Search companies by name substring in the corporate registry",
			[]string{provider.ParamQuery},
			nil,
			24*time.Hour, 60, time.Minute,
		),
		dataset: infra.NewBoundedCache(24*time.Hour, 2),
	}
}

func (f *searchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	query := strings.TrimSpace(params[provider.ParamQuery])
	if query == "" {
		return nil, &provider.ErrMissingParam{Param: provider.ParamQuery}
	}

	if msg, ok := f.FailureFor(params); ok {
		return nil, fmt.Errorf("%s", msg)
	}
	if cached, ok := f.CachedResult(params); ok {
		return cached, nil
	}

	if err := f.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	matches, err := f.search(ctx, query, params[provider.ParamAPIKey])
	if err != nil {
		f.RememberFailure(params, err.Error())
		return nil, err
	}

	result := &provider.FetchResult{
		Provider:  providerName,
		Model:     provider.ModelCompanySearch,
		Data:      models.CompanySearchResult{Query: query, Total: len(matches), Matches: matches},
		FetchedAt: time.Now(),
	}
	f.StoreResult(params, result)
	return result, nil
}

// search filters the dataset by case-insensitive substring, preserving
// dataset order.
func (f *searchFetcher) search(ctx context.Context, query, apiKey string) ([]models.CompanyRecord, error) {
	records, err := f.loadDataset(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []models.CompanyRecord
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.CorpName), needle) {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// loadDataset returns the full registry dataset, downloading and parsing
// it when the cached copy has expired.
func (f *searchFetcher) loadDataset(ctx context.Context, apiKey string) ([]models.CompanyRecord, error) {
	if cached, ok := f.dataset.Get(datasetKey); ok {
		if records, ok := cached.([]models.CompanyRecord); ok {
			return records, nil
		}
	}

	if apiKey == "" {
		return nil, &provider.ErrInvalidCredentials{
			Provider: providerName,
			Detail:   "no API key configured; set " + EnvAPIKey,
		}
	}

	raw, err := infra.Fetch(ctx, apiURL("corpCode.xml", apiKey, url.Values{}), maxRetries, longTimeout)
	if err != nil {
		return nil, fmt.Errorf("download registry dataset: %w", err)
	}

	records, err := parseDataset(raw)
	if err != nil {
		return nil, err
	}
	f.dataset.Set(datasetKey, records)
	return records, nil
}

// parseDataset unpacks the ZIP payload and decodes the contained XML
// company list. A non-ZIP payload is an upstream error document.
func parseDataset(raw []byte) ([]models.CompanyRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		if apiErr := parseErrorDocument(raw); apiErr != nil {
			return nil, apiErr
		}
		return nil, fmt.Errorf("registry dataset is not a ZIP archive: %w", err)
	}

	for _, file := range zr.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".xml") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in dataset archive: %w", file.Name, err)
		}
		records, err := parseCompanyXML(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		return records, nil
	}
	return nil, fmt.Errorf("registry dataset archive contains no XML file")
}

type corpEntry struct {
	CorpCode   string `xml:"corp_code"`
	CorpName   string `xml:"corp_name"`
	StockCode  string `xml:"stock_code"`
	ModifyDate string `xml:"modify_date"`
}

// parseCompanyXML streams <list> elements out of the dataset XML. The
// charset reader handles Korean encodings (EUC-KR) declared in the
// prolog.
func parseCompanyXML(r io.Reader) ([]models.CompanyRecord, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader

	var records []models.CompanyRecord
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse registry dataset XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "list" {
			continue
		}
		var entry corpEntry
		if err := dec.DecodeElement(&entry, &start); err != nil {
			return nil, fmt.Errorf("parse registry dataset entry: %w", err)
		}
		records = append(records, models.CompanyRecord{
			CorpCode:   strings.TrimSpace(entry.CorpCode),
			CorpName:   strings.TrimSpace(entry.CorpName),
			StockCode:  strings.TrimSpace(entry.StockCode),
			ModifyDate: strings.TrimSpace(entry.ModifyDate),
		})
	}
	return records, nil
}

// charsetReader resolves XML prolog encodings by IANA name.
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported XML charset %q", charset)
	}
	return enc.NewDecoder().Reader(input), nil
}

// parseErrorDocument recognizes the upstream XML error document that the
// dataset endpoint returns instead of a ZIP when the request is rejected.
func parseErrorDocument(raw []byte) *APIError {
	var doc struct {
		Status  string `xml:"status"`
		Message string `xml:"message"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil || doc.Status == "" {
		return nil
	}
	return &APIError{Status: doc.Status, Message: doc.Message}
}

// ChooseCompany picks the best match from a non-empty candidate list:
// a listed company whose name equals the query, then any exact name
// match, then the first listed company, then the first match.
func ChooseCompany(matches []models.CompanyRecord, query string) models.CompanyRecord {
	query = strings.TrimSpace(query)
	for _, m := range matches {
		if m.Listed() && m.CorpName == query {
			return m
		}
	}
	for _, m := range matches {
		if m.CorpName == query {
			return m
		}
	}
	for _, m := range matches {
		if m.Listed() {
			return m
		}
	}
	return matches[0]
}

// resolveCorpCode produces the canonical registry code for a lookup:
// an explicit corp_code wins, otherwise company_name is searched and
// disambiguated. opName labels errors with the calling operation.
func resolveCorpCode(ctx context.Context, search *searchFetcher, params provider.QueryParams, opName string) (string, error) {
	if code := params[provider.ParamCorpCode]; code != "" {
		normalized, err := NormalizeCorpCode(code)
		if err != nil {
			return "", fmt.Errorf("%s: %w", opName, err)
		}
		return normalized, nil
	}

	name := strings.TrimSpace(params[provider.ParamCompanyName])
	if name == "" {
		return "", &provider.ErrMissingParam{Param: provider.ParamCorpCode}
	}

	res, err := search.Fetch(ctx, provider.QueryParams{
		provider.ParamQuery:  name,
		provider.ParamAPIKey: params[provider.ParamAPIKey],
	})
	if err != nil {
		return "", fmt.Errorf("%s: resolve %q: %w", opName, name, err)
	}
	result, ok := res.Data.(models.CompanySearchResult)
	if !ok || len(result.Matches) == 0 {
		return "", fmt.Errorf("%s: %w", opName, &ResolutionError{Query: name})
	}
	return ChooseCompany(result.Matches, name).CorpCode, nil
}
