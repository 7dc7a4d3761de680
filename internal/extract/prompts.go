package extract

import "strings"

// Strategy is one prompt formulation. Strategies are tried in order; the
// retries trade instruction richness for recall after the primary prompt has
// already failed once.
type Strategy struct {
	Name  string
	Build func(taxonomyBlock, language string) string
}

// Strategies returns the ordered prompt escalation ladder.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "primary", Build: primaryPrompt},
		{Name: "retry_1", Build: retryRecallPrompt},
		{Name: "retry_2", Build: retryNoValidationPrompt},
	}
}

const csvHeaderLine = "original_product_name,translated_product_name,category,subcategory,price,receipt_date"

func primaryPrompt(taxonomyBlock, language string) string {
	var b strings.Builder
	b.WriteString(`You are analyzing one or more supermarket receipts (non-personal, sample data only).

TASK:
1. Read the attached receipt images using your vision capabilities.
`)
	if language != "" {
		b.WriteString("   The receipts are written in " + language + ".\n")
	}
	b.WriteString(`2. Extract the following information:
   - Every product line item, including:
       - product name
       - quantity (if available)
       - total price for that product
   - The purchase date shown on the receipt (e.g., "2025-11-04").
3. Validate internally that the total sum of all products matches the receipt total (do not include this validation in output).
4. Categorize each product into a main category and subcategory using the provided categories reference.
5. Translate each product name into Russian.

OUTPUT FORMAT (MANDATORY):
Return ONLY a CSV table.
The CSV must ALWAYS start with this exact header:
` + csvHeaderLine + `

Rules:
- Include one line per product.
- Enclose ALL text fields in double quotes ("...") to avoid comma conflicts.
- Repeat the same receipt_date for all products from the same receipt.
- The date format must be ISO-8601: YYYY-MM-DD (e.g., 2025-11-04).
- Use English for category and subcategory.
- Use '.' as the decimal separator for price.
- Do NOT include explanations, markdown, code blocks, or any extra text.
- Do NOT wrap the CSV in ` + "```csv``` or ```" + ` blocks.
- If the receipt date is unreadable, leave the field blank but keep the column.

Example:
` + csvHeaderLine + `
"VODA GAZIRANA KNJAZ MILOS 0,33L","Газированная вода Knjaz Miloš 0,33L","Beverages","Soft Drinks & Juices",93.98,2025-10-31
"Baguet sa belim lukom La Lorraine 165g","Багет с чесноком La Lorraine 165г","Food & Groceries","Bread",134.99,2025-11-04

Categories reference (for classification assistance):
`)
	b.WriteString(taxonomyBlock)
	return b.String()
}

// retryRecallPrompt is terse and maximal-recall: the primary prompt has
// failed once, so every instruction that could encourage skipping rows is
// dropped or inverted.
func retryRecallPrompt(taxonomyBlock, language string) string {
	var b strings.Builder
	b.WriteString("Read the attached receipt photos and list EVERY product line you can see.\n")
	if language != "" {
		b.WriteString("The receipts are written in " + language + ".\n")
	}
	b.WriteString(`Do NOT skip any row, even if it looks incomplete, duplicated, or unreadable.
Translate each product name into Russian.
Return ONLY CSV starting with exactly this header:
` + csvHeaderLine + `
Quote all text fields. Use '.' for decimals. Leave unknown fields empty.
Categories reference:
`)
	b.WriteString(taxonomyBlock)
	return b.String()
}

// retryNoValidationPrompt forbids the model's internal total-checking from
// suppressing rows, a failure mode seen when sums do not reconcile.
func retryNoValidationPrompt(taxonomyBlock, language string) string {
	var b strings.Builder
	b.WriteString("Extract all product lines from the attached receipt photos.\n")
	if language != "" {
		b.WriteString("The receipts are written in " + language + ".\n")
	}
	b.WriteString(`Do NOT validate totals and do NOT drop rows because the sum does not match the receipt total.
Output every product exactly as printed, translated into Russian in the second column.
Return ONLY CSV with exactly this header and nothing else:
` + csvHeaderLine + `
Categories reference:
`)
	b.WriteString(taxonomyBlock)
	return b.String()
}
