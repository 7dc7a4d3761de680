package csvrepair

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `original_product_name,translated_product_name,category,subcategory,price,receipt_date
"VODA GAZIRANA 0,33L","Газированная вода 0,33L","Beverages","Soft Drinks & Juices",93.98,2025-10-31
"Baguet 165g","Багет 165г","Food & Groceries","Bread",134.99,2025-10-31`

func TestExtractRoundTrip(t *testing.T) {
	cases := map[string]string{
		"bare":          wellFormed,
		"csv fence":     "Here is the table:\n```csv\n" + wellFormed + "\n```\nLet me know if you need more.",
		"generic fence": "Sure!\n```\n" + wellFormed + "\n```",
		"leading prose": "The receipt contains the following items.\n\n" + wellFormed,
		"trailing prose": wellFormed + "\nNote that prices include VAT.\n" +
			"The total matches the receipt.",
	}
	for name, input := range cases {
		got := Extract(input, nil)
		assert.Equal(t, wellFormed, got, name)
	}
}

func TestExtractUnrecoverablePassesThrough(t *testing.T) {
	in := "I could not find any table in these images."
	assert.Equal(t, in, Extract(in, nil))
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, "", Extract("   ", nil))
}

func TestNormalizePadsAndQuotes(t *testing.T) {
	in := "original_product_name,translated_product_name,category,subcategory,price,receipt_date\n" +
		"Milk,Молоко,Food & Groceries,Dairy,120.50" // short row, unquoted
	out := Normalize(in)
	items := ParseItems(out, nil)
	require.Len(t, items, 1)
	assert.Equal(t, "Milk", items[0].OriginalName)
	assert.Equal(t, "", items[0].ReceiptDate)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("120.50")))
}

func TestParseItemsDefaults(t *testing.T) {
	in := "original_product_name,translated_product_name,category,subcategory,price,receipt_date\n" +
		`"Hleb","Хлеб",,,,`
	items := ParseItems(in, nil)
	require.Len(t, items, 1)
	it := items[0]
	assert.Equal(t, "Unknown", it.Category)
	assert.Equal(t, "Unknown", it.Subcategory)
	assert.True(t, it.UnitPrice.IsZero())
	assert.True(t, it.Quantity.Equal(decimal.NewFromInt(1)))
}

func TestParseItemsCommaDecimal(t *testing.T) {
	in := "original_product_name,translated_product_name,category,subcategory,price,receipt_date\n" +
		`"Sir","Сыр","Food & Groceries","Cheese","249,99",2025-11-04`
	items := ParseItems(in, nil)
	require.Len(t, items, 1)
	assert.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("249.99")))
}

func TestParseItemsGarbageYieldsNothing(t *testing.T) {
	assert.Empty(t, ParseItems("no table here at all", nil))
	assert.Empty(t, ParseItems("", nil))
}
