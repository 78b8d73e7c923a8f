package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dartlens/dartlens/internal/infra"
	"github.com/dartlens/dartlens/internal/provider"
	"github.com/dartlens/dartlens/pkg/models"
)

// documentFetcher downloads a filed disclosure document by receipt number.
//
// The xml path parses the document into a nested map, degrading to raw
// content with a parse-error marker when the document is malformed. The
// pdf path returns the binary re-encoded as base64 with its media type.
type documentFetcher struct {
	provider.BaseFetcher
	provider *DartProvider
}

func newDocumentFetcher(p *DartProvider) *documentFetcher {
	return &documentFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelDocument,
			"Download a disclosure document by receipt number",
			[]string{provider.ParamReceiptNo},
			[]string{provider.ParamFormat},
			24*time.Hour, 60, time.Minute,
		),
		provider: p,
	}
}

func (f *documentFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	receiptNo, err := normalizeReceiptNo(params[provider.ParamReceiptNo])
	if err != nil {
		return nil, err
	}
	format, err := normalizeFormat(params[provider.ParamFormat])
	if err != nil {
		return nil, err
	}

	canonical := provider.QueryParams{
		provider.ParamReceiptNo: receiptNo,
		provider.ParamFormat:    format,
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
	if apiKey == "" {
		return nil, &provider.ErrInvalidCredentials{
			Provider: providerName,
			Detail:   "no API key configured; set " + EnvAPIKey,
		}
	}

	query := url.Values{}
	query.Set("rcept_no", receiptNo)
	raw, err := infra.Fetch(ctx, apiURL("document."+format, apiKey, query), maxRetries, longTimeout)
	if err != nil {
		f.RememberFailure(canonical, err.Error())
		return nil, err
	}
	if apiErr := parseErrorDocument(raw); apiErr != nil {
		f.RememberFailure(canonical, apiErr.Error())
		return nil, apiErr
	}

	doc := &models.DisclosureDocument{ReceiptNo: receiptNo, Format: format}
	switch format {
	case "pdf":
		doc.MimeType = "application/pdf"
		doc.Size = len(raw)
		doc.Data = base64.StdEncoding.EncodeToString(raw)
	default:
		content := unwrapArchive(raw)
		doc.Content = string(content)
		parsed, err := parseDocumentXML(content)
		if err != nil {
			doc.ParseError = err.Error()
		} else {
			doc.Document = parsed
		}
	}

	result := &provider.FetchResult{
		Provider:  providerName,
		Model:     provider.ModelDocument,
		Data:      doc,
		FetchedAt: time.Now(),
	}
	f.StoreResult(canonical, result)
	return result, nil
}

// unwrapArchive extracts the first XML entry when the payload is a ZIP
// archive; otherwise the payload is the document itself.
func unwrapArchive(raw []byte) []byte {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return raw
	}
	for _, file := range zr.File {
		if !strings.HasSuffix(strings.ToLower(file.Name), ".xml") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err == nil {
			return content
		}
	}
	return raw
}

// parseDocumentXML converts an XML document into a nested map. Each
// element becomes a map with optional "text" and "attributes" keys and
// one key per child tag; repeated tags are promoted to a list in document
// order, so the conversion is deterministic and lossless.
func parseDocumentXML(content []byte) (map[string]any, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = charsetReader

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("document has no root element")
		}
		if err != nil {
			return nil, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			element, err := parseElement(dec, start)
			if err != nil {
				return nil, err
			}
			return map[string]any{start.Name.Local: element}, nil
		}
	}
}

func parseElement(dec *xml.Decoder, start xml.StartElement) (map[string]any, error) {
	element := make(map[string]any)
	if len(start.Attr) > 0 {
		attrs := make(map[string]any, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		element["attributes"] = attrs
	}

	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			addChild(element, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if s := strings.TrimSpace(text.String()); s != "" {
				element["text"] = s
			}
			return element, nil
		}
	}
}

// addChild stores a child element under its tag, promoting to a list when
// the tag repeats.
func addChild(element map[string]any, tag string, child map[string]any) {
	existing, ok := element[tag]
	if !ok {
		element[tag] = child
		return
	}
	if list, ok := existing.([]any); ok {
		element[tag] = append(list, child)
		return
	}
	element[tag] = []any{existing, child}
}
