package dart

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// nowFunc supplies the current time; overridden in tests.
var nowFunc = time.Now

// NormalizeCorpCode validates a registry code and zero-pads it to the
// canonical 8-digit form. Codes must be non-empty, all digits, and at
// most 8 characters.
func NormalizeCorpCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", &ValidationError{Field: "corp_code", Reason: "must not be empty"}
	}
	if len(code) > 8 {
		return "", &ValidationError{Field: "corp_code", Reason: "must be at most 8 digits"}
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "corp_code", Reason: "must contain only digits"}
		}
	}
	return strings.Repeat("0", 8-len(code)) + code, nil
}

// normalizeBusinessYear validates a 4-digit business year. An empty value
// falls back to fallback. Years must lie in [2000, current year + 1].
func normalizeBusinessYear(year, fallback string) (string, error) {
	year = strings.TrimSpace(year)
	if year == "" {
		year = fallback
	}
	if len(year) != 4 {
		return "", &ValidationError{Field: "bsns_year", Reason: "must be a 4-digit year"}
	}
	n, err := strconv.Atoi(year)
	if err != nil {
		return "", &ValidationError{Field: "bsns_year", Reason: "must be a 4-digit year"}
	}
	maxYear := nowFunc().Year() + 1
	if n < 2000 || n > maxYear {
		return "", &ValidationError{
			Field:  "bsns_year",
			Reason: fmt.Sprintf("must be between 2000 and %d", maxYear),
		}
	}
	return year, nil
}

// defaultStatementYear is the previous calendar year, the most recent year
// likely to have a filed statement.
func defaultStatementYear() string {
	return strconv.Itoa(nowFunc().Year() - 1)
}

// defaultExecutivesYear is the current year, except before March when
// annual filings are not yet in and the previous year applies.
func defaultExecutivesYear() string {
	now := nowFunc()
	if now.Month() < time.March {
		return strconv.Itoa(now.Year() - 1)
	}
	return strconv.Itoa(now.Year())
}

// candidateYears returns the fallback sequence for a period-sensitive
// lookup: the requested year first, then up to three recent years
// (current-1 .. current-3) excluding the requested one.
func candidateYears(requested string) []string {
	years := []string{requested}
	cur := nowFunc().Year()
	for i := 1; i <= 3; i++ {
		y := strconv.Itoa(cur - i)
		if y != requested {
			years = append(years, y)
		}
	}
	return years
}

// normalizeReportCode validates the period code, defaulting to annual.
func normalizeReportCode(code string) (string, error) {
	switch strings.TrimSpace(code) {
	case "":
		return ReportAnnual, nil
	case ReportAnnual:
		return ReportAnnual, nil
	case ReportQuarterly:
		return ReportQuarterly, nil
	default:
		return "", &ValidationError{
			Field:  "reprt_code",
			Reason: fmt.Sprintf("must be %s (annual) or %s (quarterly)", ReportAnnual, ReportQuarterly),
		}
	}
}

// validateDate8 checks a YYYYMMDD date string.
func validateDate8(field, value string) error {
	if len(value) != 8 {
		return &ValidationError{Field: field, Reason: "must be YYYYMMDD"}
	}
	if _, err := time.Parse("20060102", value); err != nil {
		return &ValidationError{Field: field, Reason: "must be a valid YYYYMMDD date"}
	}
	return nil
}

// normalizeDateRange validates a disclosure window, defaulting to the last
// 30 days ending today.
func normalizeDateRange(begin, end string) (string, string, error) {
	now := nowFunc()
	if end == "" {
		end = now.Format("20060102")
	}
	if begin == "" {
		begin = now.AddDate(0, 0, -30).Format("20060102")
	}
	if err := validateDate8("bgn_de", begin); err != nil {
		return "", "", err
	}
	if err := validateDate8("end_de", end); err != nil {
		return "", "", err
	}
	if begin > end {
		return "", "", &ValidationError{Field: "bgn_de", Reason: "must not be after end_de"}
	}
	return begin, end, nil
}

// normalizePaging validates page_no and page_count, defaulting to the
// first page of 10 entries. page_count is capped at 100 by the upstream.
func normalizePaging(pageNo, pageCount string) (int, int, error) {
	no := 1
	if pageNo != "" {
		n, err := strconv.Atoi(pageNo)
		if err != nil || n < 1 {
			return 0, 0, &ValidationError{Field: "page_no", Reason: "must be a positive integer"}
		}
		no = n
	}
	count := 10
	if pageCount != "" {
		n, err := strconv.Atoi(pageCount)
		if err != nil || n < 1 || n > 100 {
			return 0, 0, &ValidationError{Field: "page_count", Reason: "must be between 1 and 100"}
		}
		count = n
	}
	return no, count, nil
}

// normalizeYears validates the trend window size, defaulting to 5 and
// clamping to [1, 10].
func normalizeYears(years string) (int, error) {
	if years == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(years)
	if err != nil {
		return 0, &ValidationError{Field: "years", Reason: "must be an integer"}
	}
	if n < 1 {
		n = 1
	}
	if n > 10 {
		n = 10
	}
	return n, nil
}

// normalizeReceiptNo validates a 14-digit disclosure receipt number.
func normalizeReceiptNo(rcept string) (string, error) {
	rcept = strings.TrimSpace(rcept)
	if rcept == "" {
		return "", &ValidationError{Field: "rcept_no", Reason: "must not be empty"}
	}
	for _, r := range rcept {
		if r < '0' || r > '9' {
			return "", &ValidationError{Field: "rcept_no", Reason: "must contain only digits"}
		}
	}
	return rcept, nil
}

// normalizeFormat validates the document format, defaulting to xml.
func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "xml":
		return "xml", nil
	case "pdf":
		return "pdf", nil
	default:
		return "", &ValidationError{Field: "format", Reason: "must be xml or pdf"}
	}
}
