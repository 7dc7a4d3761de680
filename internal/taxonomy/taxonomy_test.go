package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
categories:
  - name: Beverages
    subcategories:
      - Soft Drinks & Juices
      - Water
  - name: Food & Groceries
    subcategories:
      - Bread
      - Dairy
`

func TestParse(t *testing.T) {
	tx, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"Beverages", "Food & Groceries"}, tx.Names())
	assert.Equal(t, []string{"Bread", "Dairy"}, tx.Subcategories("Food & Groceries"))
	assert.Equal(t, []string{"Bread", "Dairy"}, tx.Subcategories("food & groceries"))
	assert.Nil(t, tx.Subcategories("Electronics"))
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty list":   "categories: []",
		"missing name": "categories:\n  - subcategories: [A]",
		"not yaml":     ": : :",
		"wrong shape":  "categories: 42",
	}
	for name, in := range cases {
		_, err := Parse([]byte(in))
		assert.Error(t, err, name)
	}
}

func TestPromptBlock(t *testing.T) {
	tx, err := Parse([]byte(sample))
	require.NoError(t, err)

	block := tx.PromptBlock()
	assert.Contains(t, block, "category,subcategory\n")
	assert.Contains(t, block, `"Beverages","Water"`)
	assert.Contains(t, block, `"Food & Groceries","Bread"`)
}
