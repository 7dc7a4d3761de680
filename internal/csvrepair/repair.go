// Package csvrepair recovers a usable CSV table from the free-form text a
// vision model returns: it strips surrounding prose and markdown fencing,
// normalizes quoting and field counts, and parses line items with defaults.
package csvrepair

import (
	"encoding/csv"
	"log/slog"
	"strings"
)

// headerKeywords identify the header line the extraction prompt mandates.
var headerKeywords = []string{
	"original_product_name",
	"translated_product_name",
	"category",
	"subcategory",
	"price",
}

// Extract strictly extracts the CSV block from a model response, removing all
// surrounding text. If no usable structure is found, the trimmed original is
// returned so downstream parsing can fail (to zero items) on the real input.
func Extract(text string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	text = stripFences(text)

	lines := strings.Split(text, "\n")

	// Locate the header: a keyword match with enough delimiters, else the
	// first line with >= 4 commas.
	headerIdx := -1
	for i, line := range lines {
		low := strings.ToLower(line)
		for _, kw := range headerKeywords {
			if strings.Contains(low, kw) && strings.Count(line, ",") >= 4 {
				headerIdx = i
				break
			}
		}
		if headerIdx != -1 {
			break
		}
	}
	if headerIdx == -1 {
		for i, line := range lines {
			if strings.Count(line, ",") >= 4 && strings.TrimSpace(line) != "" {
				headerIdx = i
				break
			}
		}
	}
	if headerIdx == -1 {
		logger.Warn("csvrepair.no_header", "preview", preview(text))
		headerIdx = 0
	}

	// Keep lines from the header on, dropping blanks and non-CSV shapes.
	var kept []string
	for _, line := range lines[headerIdx:] {
		if strings.TrimSpace(line) == "" || strings.Count(line, ",") < 3 {
			continue
		}
		kept = append(kept, line)
	}

	// Trailing prose guard: stop at the first line whose comma count falls
	// more than one below the header's (quoted fields may add commas).
	if len(kept) > 0 {
		expected := strings.Count(kept[0], ",")
		valid := kept[:1]
		for _, line := range kept[1:] {
			if strings.Count(line, ",") >= expected-1 {
				valid = append(valid, line)
			} else {
				break
			}
		}
		kept = valid
	}

	result := strings.TrimSpace(strings.Join(kept, "\n"))
	if result == "" || !strings.Contains(result, ",") {
		logger.Warn("csvrepair.extract_failed", "preview", preview(text))
		return text
	}
	logger.Debug("csvrepair.extracted", "lines", len(kept))
	return result
}

// Normalize re-emits the table through the csv writer so that every field is
// consistently quoted and every row has the header's field count (short rows
// padded, long rows truncated). Input that does not parse at all is passed
// through unchanged.
func Normalize(csvText string) string {
	rows := readLenient(csvText)
	if len(rows) == 0 {
		return csvText
	}
	width := len(rows[0])

	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range rows {
		switch {
		case len(row) < width:
			for len(row) < width {
				row = append(row, "")
			}
		case len(row) > width:
			row = row[:width]
		}
		_ = w.Write(row)
	}
	w.Flush()
	return strings.TrimSpace(b.String())
}

// readLenient parses csvText row by row, tolerating per-row field count
// drift and bare quotes.
func readLenient(csvText string) [][]string {
	r := csv.NewReader(strings.NewReader(csvText))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		rows = append(rows, rec)
	}
	return rows
}

// stripFences removes markdown code fencing, preferring a ```csv block and
// otherwise picking the fenced part that looks most like the expected table.
func stripFences(text string) string {
	low := strings.ToLower(text)
	if i := strings.Index(low, "```csv"); i != -1 {
		rest := text[i+len("```csv"):]
		if j := strings.Index(rest, "```"); j != -1 {
			return strings.TrimSpace(rest[:j])
		}
		return strings.TrimSpace(rest)
	}
	if !strings.Contains(text, "```") {
		return text
	}
	parts := strings.Split(text, "```")
	for _, part := range parts {
		pl := strings.ToLower(part)
		if !strings.Contains(part, ",") {
			continue
		}
		if strings.Contains(pl, "original_product_name") ||
			(strings.Contains(pl, "product") && strings.Contains(pl, "price")) {
			return strings.TrimSpace(part)
		}
	}
	if len(parts) > 1 {
		return strings.TrimSpace(parts[1])
	}
	return text
}

func preview(s string) string {
	if len(s) > 120 {
		return s[:120]
	}
	return s
}
