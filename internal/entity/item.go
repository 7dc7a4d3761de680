package entity

import (
	"github.com/shopspring/decimal"

	"github.com/avelichko/receipty/constants"
)

// LineItem is one product line extracted from a receipt. Fields are mutated
// in place during the review/edit dialogue and frozen on confirmation.
type LineItem struct {
	OriginalName   string
	TranslatedName string
	Category       string
	Subcategory    string
	UnitPrice      decimal.Decimal
	Quantity       decimal.Decimal
	Currency       string // ISO 4217, empty until assigned during review
	ReceiptDate    string // YYYY-MM-DD, empty until stamped
}

// NewLineItem returns an item with the extraction defaults applied:
// unknown categories, zero price, quantity one.
func NewLineItem() LineItem {
	return LineItem{
		Category:    constants.UnknownCategory,
		Subcategory: constants.UnknownCategory,
		UnitPrice:   decimal.Zero,
		Quantity:    decimal.NewFromInt(1),
	}
}

// DisplayName prefers the translated name, falling back to the original.
func (it LineItem) DisplayName() string {
	if it.TranslatedName != "" {
		return it.TranslatedName
	}
	return it.OriginalName
}
