package csvrepair

import (
	"encoding/csv"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avelichko/receipty/internal/entity"
)

// ParseItems parses a repaired CSV table into line items, applying the field
// defaults: missing category/subcategory become "Unknown", missing price
// becomes zero, missing quantity becomes one. Unusable input yields zero
// items rather than an error; the caller decides whether that is fatal.
func ParseItems(csvText string, logger *slog.Logger) []entity.LineItem {
	if logger == nil {
		logger = slog.Default()
	}

	lines := strings.Split(strings.TrimSpace(csvText), "\n")
	start := 0
	found := false
	for i, line := range lines {
		low := strings.ToLower(line)
		if strings.Contains(low, "original_product_name") || strings.Contains(low, "translated_product_name") {
			start = i
			found = true
			break
		}
	}
	if !found {
		for i, line := range lines {
			if strings.Count(line, ",") >= 2 {
				start = i
				break
			}
		}
	}

	r := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		logger.Warn("csvrepair.parse.no_header", "error", err)
		return nil
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var items []entity.LineItem
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		it := entity.NewLineItem()
		it.OriginalName = field(rec, "original_product_name")
		it.TranslatedName = field(rec, "translated_product_name")
		if c := field(rec, "category"); c != "" {
			it.Category = c
		}
		if s := field(rec, "subcategory"); s != "" {
			it.Subcategory = s
		}
		it.UnitPrice = parseDecimal(field(rec, "price"), decimal.Zero)
		if q := field(rec, "quantity"); q != "" {
			it.Quantity = parseDecimal(q, decimal.NewFromInt(1))
		}
		it.ReceiptDate = field(rec, "receipt_date")
		items = append(items, it)
	}

	logger.Debug("csvrepair.parsed", "items", len(items))
	return items
}

// parseDecimal accepts comma or period decimal separators; unparseable
// values fall back to def.
func parseDecimal(s string, def decimal.Decimal) decimal.Decimal {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return def
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return def
	}
	return d
}
