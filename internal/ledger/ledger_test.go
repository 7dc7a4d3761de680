package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelichko/receipty/internal/entity"
)

func item(name string, qty string) entity.LineItem {
	it := entity.NewLineItem()
	it.OriginalName = name
	it.Quantity = decimal.RequireFromString(qty)
	return it
}

func TestExpandByQuantity(t *testing.T) {
	cases := []struct {
		qty  string
		rows int
	}{
		{"3.7", 3},
		{"0.4", 1},
		{"2", 2},
		{"1", 1},
		{"0", 1},
	}
	for _, tc := range cases {
		l := New([]entity.LineItem{item("milk", tc.qty)})
		rows := l.ExpandByQuantity()
		assert.Len(t, rows, tc.rows, "quantity %s", tc.qty)
		for _, r := range rows {
			assert.True(t, r.Quantity.Equal(decimal.NewFromInt(1)), "expanded rows carry quantity 1")
		}
	}
}

func TestExpandByQuantityOrderPreserving(t *testing.T) {
	l := New([]entity.LineItem{item("a", "2"), item("b", "1"), item("c", "3")})
	rows := l.ExpandByQuantity()
	require.Len(t, rows, 6)
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.OriginalName
	}
	assert.Equal(t, []string{"a", "a", "b", "c", "c", "c"}, names)
}

func TestRemoveAndBounds(t *testing.T) {
	l := New([]entity.LineItem{item("a", "1"), item("b", "1")})
	require.Error(t, l.Remove(2))
	require.Error(t, l.Remove(-1))
	require.NoError(t, l.Remove(0))
	require.Equal(t, 1, l.Len())
	it, err := l.Item(0)
	require.NoError(t, err)
	assert.Equal(t, "b", it.OriginalName)
}

func TestStampDateOnlyFillsEmpty(t *testing.T) {
	a := item("a", "1")
	a.ReceiptDate = "2026-01-15"
	b := item("b", "1")
	l := New([]entity.LineItem{a, b})
	l.StampDate("2026-08-29")
	assert.Equal(t, "2026-01-15", l.Items()[0].ReceiptDate)
	assert.Equal(t, "2026-08-29", l.Items()[1].ReceiptDate)
}

func TestSetCurrency(t *testing.T) {
	l := New([]entity.LineItem{item("a", "1"), item("b", "1")})
	l.SetCurrency("RSD")
	for _, it := range l.Items() {
		assert.Equal(t, "RSD", it.Currency)
	}
}
