package constants

// CSVColumns is the exact header the extraction service is instructed to emit.
var CSVColumns = []string{
	"original_product_name",
	"translated_product_name",
	"category",
	"subcategory",
	"price",
	"receipt_date",
}

// ExportColumns is CSVColumns plus the currency assigned during review.
var ExportColumns = append(append([]string{}, CSVColumns...), "currency")

// UnknownCategory is the fallback for category and subcategory fields the
// extraction service left blank.
const UnknownCategory = "Unknown"
