package provider

// ModelType identifies a standardized lookup model that providers can fetch.
type ModelType string

const (
	// Company identity
	ModelCompanySearch   ModelType = "CompanySearch"
	ModelCompanyOverview ModelType = "CompanyOverview"

	// Financials
	ModelFinancialStatement ModelType = "FinancialStatement"
	ModelFinancialTrend     ModelType = "FinancialTrend"

	// Disclosures
	ModelDisclosureList ModelType = "DisclosureList"
	ModelDisclosureFeed ModelType = "DisclosureFeed"
	ModelMajorReport    ModelType = "MajorReport"
	ModelDocument       ModelType = "Document"

	// People and ownership
	ModelExecutives   ModelType = "Executives"
	ModelShareholders ModelType = "Shareholders"
)

// AllModels lists every model type known to the registry.
var AllModels = []ModelType{
	ModelCompanySearch,
	ModelCompanyOverview,
	ModelFinancialStatement,
	ModelFinancialTrend,
	ModelDisclosureList,
	ModelDisclosureFeed,
	ModelMajorReport,
	ModelDocument,
	ModelExecutives,
	ModelShareholders,
}

// ModelCategory groups a model type for display purposes.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelCompanySearch, ModelCompanyOverview:
		return "company"
	case ModelFinancialStatement, ModelFinancialTrend:
		return "financials"
	case ModelDisclosureList, ModelDisclosureFeed, ModelMajorReport, ModelDocument:
		return "disclosures"
	case ModelExecutives, ModelShareholders:
		return "ownership"
	default:
		return "other"
	}
}
