// Package models defines the standardized data structures returned by
// lookup operations, independent of any upstream wire format.
package models

// CompanyRecord is one entry in the corporate registry dataset.
type CompanyRecord struct {
	CorpCode   string `json:"corp_code"`             // 8-digit registry identifier
	CorpName   string `json:"corp_name"`             // official Korean name
	StockCode  string `json:"stock_code,omitempty"`  // 6-digit ticker, empty for unlisted
	ModifyDate string `json:"modify_date,omitempty"` // YYYYMMDD of last registry update
}

// Listed reports whether the company trades on an exchange.
func (r CompanyRecord) Listed() bool { return r.StockCode != "" }

// CompanySearchResult holds the matches for a name substring search.
type CompanySearchResult struct {
	Query   string          `json:"query"`
	Total   int             `json:"total"`
	Matches []CompanyRecord `json:"matches"`
}

// CompanyOverview is a company's registered profile.
type CompanyOverview struct {
	CorpCode       string `json:"corp_code"`
	CorpName       string `json:"corp_name"`
	CorpNameEng    string `json:"corp_name_eng,omitempty"`
	StockName      string `json:"stock_name,omitempty"`
	StockCode      string `json:"stock_code,omitempty"`
	CEOName        string `json:"ceo_name,omitempty"`
	CorpClass      string `json:"corp_class,omitempty"` // market class: Y KOSPI, K KOSDAQ, N KONEX, E other
	JurisdictionNo string `json:"jurisdiction_no,omitempty"`
	BusinessNo     string `json:"business_no,omitempty"`
	Address        string `json:"address,omitempty"`
	HomepageURL    string `json:"homepage_url,omitempty"`
	IRURL          string `json:"ir_url,omitempty"`
	PhoneNo        string `json:"phone_no,omitempty"`
	FaxNo          string `json:"fax_no,omitempty"`
	IndustryCode   string `json:"industry_code,omitempty"`
	EstablishedOn  string `json:"established_on,omitempty"` // YYYYMMDD
	FiscalMonth    string `json:"fiscal_month,omitempty"`   // accounting settlement month
}

// FinancialAccount is one line item of a financial statement.
type FinancialAccount struct {
	StatementDiv     string `json:"statement_div,omitempty"`  // BS, IS, CIS, CF, SCE
	StatementName    string `json:"statement_name,omitempty"` // e.g. 재무상태표
	AccountName      string `json:"account_name"`
	ThisTermName     string `json:"this_term_name,omitempty"`
	ThisTermAmount   string `json:"this_term_amount,omitempty"`
	PrevTermName     string `json:"prev_term_name,omitempty"`
	PrevTermAmount   string `json:"prev_term_amount,omitempty"`
	BeforeTermName   string `json:"before_term_name,omitempty"`
	BeforeTermAmount string `json:"before_term_amount,omitempty"`
	Currency         string `json:"currency,omitempty"`
	Ordering         string `json:"ordering,omitempty"`
}

// FinancialStatement is a company's financial statement for one business
// year. BusinessYear is the year that actually produced data; when the
// requested year had no filing yet, RequestedYear records what was asked
// and BusinessYear the substitute that answered.
type FinancialStatement struct {
	CorpCode      string             `json:"corp_code"`
	CorpName      string             `json:"corp_name,omitempty"`
	BusinessYear  string             `json:"bsns_year"`
	RequestedYear string             `json:"requested_year,omitempty"`
	ReportCode    string             `json:"reprt_code"`
	Consolidated  bool               `json:"consolidated"`
	Accounts      []FinancialAccount `json:"accounts"`
}

// YearFinancials is one year's slot in a multi-year trend.
type YearFinancials struct {
	Year      string              `json:"year"`
	Statement *FinancialStatement `json:"statement,omitempty"`
	Error     string              `json:"error,omitempty"` // why this year is missing
}

// FinancialTrend is a multi-year view of a company's financials,
// most recent year first.
type FinancialTrend struct {
	CorpCode string           `json:"corp_code"`
	Years    []YearFinancials `json:"years"`
}

// Disclosure is one public filing record.
type Disclosure struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	StockCode   string `json:"stock_code,omitempty"`
	CorpClass   string `json:"corp_class,omitempty"`
	ReportName  string `json:"report_name"`
	ReceiptNo   string `json:"rcept_no"`
	FilerName   string `json:"filer_name,omitempty"`
	ReceiptDate string `json:"rcept_dt"` // YYYYMMDD
	Remark      string `json:"remark,omitempty"`
}

// DisclosureList is one page of disclosure filings.
type DisclosureList struct {
	CorpCode    string       `json:"corp_code,omitempty"`
	BeginDate   string       `json:"bgn_de"`
	EndDate     string       `json:"end_de"`
	PageNo      int          `json:"page_no"`
	PageCount   int          `json:"page_count"`
	TotalCount  int          `json:"total_count"`
	TotalPage   int          `json:"total_page"`
	Disclosures []Disclosure `json:"disclosures"`
}

// MajorReport is one key-matter report (capital changes, mergers, and
// similar material events).
type MajorReport struct {
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name,omitempty"`
	ReceiptNo   string `json:"rcept_no"`
	ReceiptDate string `json:"rcept_dt,omitempty"`
	ReportName  string `json:"report_name,omitempty"`
	Remark      string `json:"remark,omitempty"`
}

// MajorReportList holds the key-matter reports for a company and window.
type MajorReportList struct {
	CorpCode  string        `json:"corp_code"`
	BeginDate string        `json:"bgn_de"`
	EndDate   string        `json:"end_de"`
	Reports   []MajorReport `json:"reports"`
}

// DisclosureDocument is the content of one filed document.
//
// For XML documents, Document holds the parsed tree and Content the raw
// text; if parsing fails, ParseError explains why and Content still
// carries the raw payload. For PDF documents, Data holds the base64
// payload and Size the byte length.
type DisclosureDocument struct {
	ReceiptNo  string         `json:"rcept_no"`
	Format     string         `json:"format"` // xml or pdf
	Content    string         `json:"content,omitempty"`
	Document   map[string]any `json:"document,omitempty"`
	ParseError string         `json:"parse_error,omitempty"`
	MimeType   string         `json:"mime_type,omitempty"`
	Size       int            `json:"size,omitempty"`
	Data       string         `json:"data,omitempty"` // base64 for binary formats
}

// Executive is one registered officer in an employment-status filing.
type Executive struct {
	Name          string `json:"name"`
	Sex           string `json:"sex,omitempty"`
	BirthYearMon  string `json:"birth_ym,omitempty"`
	Position      string `json:"position,omitempty"`
	Registered    string `json:"registered,omitempty"` // registered executive or not
	FullTime      string `json:"full_time,omitempty"`
	Charge        string `json:"charge,omitempty"` // area of responsibility
	MainCareer    string `json:"main_career,omitempty"`
	TenureEndDate string `json:"tenure_end_on,omitempty"`
}

// ExecutiveList holds a company's registered executives for one period.
type ExecutiveList struct {
	CorpCode     string      `json:"corp_code"`
	BusinessYear string      `json:"bsns_year"`
	ReportCode   string      `json:"reprt_code"`
	Executives   []Executive `json:"executives"`
}

// Shareholder is one large-holding report entry.
type Shareholder struct {
	ReceiptNo    string `json:"rcept_no,omitempty"`
	ReceiptDate  string `json:"rcept_dt,omitempty"`
	CorpName     string `json:"corp_name,omitempty"`
	Reporter     string `json:"reporter"`
	StockCount   string `json:"stock_count,omitempty"`
	StockChange  string `json:"stock_change,omitempty"`
	HoldingRatio string `json:"holding_ratio,omitempty"`
	RatioChange  string `json:"ratio_change,omitempty"`
	ReportReason string `json:"report_reason,omitempty"`
}

// ShareholderList holds the major shareholders reported for a company.
type ShareholderList struct {
	CorpCode     string        `json:"corp_code"`
	Shareholders []Shareholder `json:"shareholders"`
}

// FeedItem is one entry from the real-time disclosure feed.
type FeedItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Published   string `json:"published,omitempty"`
	GUID        string `json:"guid,omitempty"`
	Description string `json:"description,omitempty"`
}

// DisclosureFeed is the current snapshot of the real-time filing feed.
type DisclosureFeed struct {
	Title   string     `json:"title,omitempty"`
	Updated string     `json:"updated,omitempty"`
	Items   []FeedItem `json:"items"`
}
