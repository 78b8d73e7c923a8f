package dart

// Upstream JSON envelopes. Every API response carries status and message;
// "000" is success and "013" means no matching data.

type apiEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ok reports success. err converts a non-success envelope into *APIError.
func (e apiEnvelope) ok() bool { return e.Status == statusOK }

func (e apiEnvelope) err() error {
	return &APIError{Status: e.Status, Message: e.Message}
}

type companyResponse struct {
	apiEnvelope
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	CorpNameEng string `json:"corp_name_eng"`
	StockName   string `json:"stock_name"`
	StockCode   string `json:"stock_code"`
	CEOName     string `json:"ceo_nm"`
	CorpClass   string `json:"corp_cls"`
	JurirNo     string `json:"jurir_no"`
	BizrNo      string `json:"bizr_no"`
	Address     string `json:"adres"`
	HomeURL     string `json:"hm_url"`
	IRURL       string `json:"ir_url"`
	PhoneNo     string `json:"phn_no"`
	FaxNo       string `json:"fax_no"`
	IndustyCode string `json:"induty_code"`
	EstDate     string `json:"est_dt"`
	AccMonth    string `json:"acc_mt"`
}

type fnlttAccount struct {
	RceptNo        string `json:"rcept_no"`
	ReprtCode      string `json:"reprt_code"`
	BsnsYear       string `json:"bsns_year"`
	CorpCode       string `json:"corp_code"`
	StockCode      string `json:"stock_code"`
	FsDiv          string `json:"fs_div"`
	FsName         string `json:"fs_nm"`
	SjDiv          string `json:"sj_div"`
	SjName         string `json:"sj_nm"`
	AccountName    string `json:"account_nm"`
	ThstrmName     string `json:"thstrm_nm"`
	ThstrmDate     string `json:"thstrm_dt"`
	ThstrmAmount   string `json:"thstrm_amount"`
	FrmtrmName     string `json:"frmtrm_nm"`
	FrmtrmDate     string `json:"frmtrm_dt"`
	FrmtrmAmount   string `json:"frmtrm_amount"`
	BfefrmtrmName  string `json:"bfefrmtrm_nm"`
	BfefrmtrmDate  string `json:"bfefrmtrm_dt"`
	BfefrmtrmAmont string `json:"bfefrmtrm_amount"`
	Currency       string `json:"currency"`
	Ordering       string `json:"ord"`
}

type fnlttResponse struct {
	apiEnvelope
	List []fnlttAccount `json:"list"`
}

type listItem struct {
	CorpCode  string `json:"corp_code"`
	CorpName  string `json:"corp_name"`
	StockCode string `json:"stock_code"`
	CorpClass string `json:"corp_cls"`
	ReportNm  string `json:"report_nm"`
	RceptNo   string `json:"rcept_no"`
	FlrName   string `json:"flr_nm"`
	RceptDate string `json:"rcept_dt"`
	Remark    string `json:"rm"`
}

type listResponse struct {
	apiEnvelope
	PageNo     int        `json:"page_no"`
	PageCount  int        `json:"page_count"`
	TotalCount int        `json:"total_count"`
	TotalPage  int        `json:"total_page"`
	List       []listItem `json:"list"`
}

type majorReportItem struct {
	RceptNo   string `json:"rcept_no"`
	RceptDate string `json:"rcept_dt"`
	CorpCode  string `json:"corp_code"`
	CorpName  string `json:"corp_name"`
	ReportNm  string `json:"report_nm"`
	Remark    string `json:"rm"`
}

type majorReportResponse struct {
	apiEnvelope
	List []majorReportItem `json:"list"`
}

type executiveItem struct {
	CorpCode     string `json:"corp_code"`
	CorpName     string `json:"corp_name"`
	Name         string `json:"nm"`
	Sex          string `json:"sexdstn"`
	BirthYM      string `json:"birth_ym"`
	Position     string `json:"ofcps"`
	Registered   string `json:"rgist_exctv_at"`
	FullTime     string `json:"fte_at"`
	Charge       string `json:"chrg_job"`
	MainCareer   string `json:"main_career"`
	TenureEndOn  string `json:"tenure_end_on"`
	MaximumShrhr string `json:"mxmm_shrholdr_relate"`
}

type executiveResponse struct {
	apiEnvelope
	List []executiveItem `json:"list"`
}

type majorstockItem struct {
	RceptNo     string `json:"rcept_no"`
	RceptDate   string `json:"rcept_dt"`
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	ReportTp    string `json:"report_tp"`
	Reporter    string `json:"repror"`
	StockCount  string `json:"stkqy"`
	StockChange string `json:"stkqy_irds"`
	StockRatio  string `json:"stkrt"`
	RatioChange string `json:"stkrt_irds"`
	CtrStkCount string `json:"ctr_stkqy"`
	CtrStkRatio string `json:"ctr_stkrt"`
	ReportResn  string `json:"report_resn"`
}

type majorstockResponse struct {
	apiEnvelope
	List []majorstockItem `json:"list"`
}
