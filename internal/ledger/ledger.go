// Package ledger holds the editable line items of one pending submission and
// translates them into the flat row shape the persistence sinks expect.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/avelichko/receipty/internal/entity"
)

// Ledger is the ordered, index-addressed set of line items under review.
type Ledger struct {
	items []entity.LineItem
}

// New wraps items in a ledger. The slice is owned by the ledger afterwards.
func New(items []entity.LineItem) *Ledger {
	return &Ledger{items: items}
}

func (l *Ledger) Len() int                 { return len(l.items) }
func (l *Ledger) Items() []entity.LineItem { return l.items }

// Item returns the item at idx.
func (l *Ledger) Item(idx int) (entity.LineItem, error) {
	if idx < 0 || idx >= len(l.items) {
		return entity.LineItem{}, fmt.Errorf("item index %d out of range [0,%d)", idx, len(l.items))
	}
	return l.items[idx], nil
}

// SetQuantity replaces the quantity of the item at idx.
func (l *Ledger) SetQuantity(idx int, q decimal.Decimal) error {
	if idx < 0 || idx >= len(l.items) {
		return fmt.Errorf("item index %d out of range [0,%d)", idx, len(l.items))
	}
	l.items[idx].Quantity = q
	return nil
}

// SetPrice replaces the unit price of the item at idx.
func (l *Ledger) SetPrice(idx int, p decimal.Decimal) error {
	if idx < 0 || idx >= len(l.items) {
		return fmt.Errorf("item index %d out of range [0,%d)", idx, len(l.items))
	}
	l.items[idx].UnitPrice = p
	return nil
}

// Remove deletes the item at idx, preserving order of the rest.
func (l *Ledger) Remove(idx int) error {
	if idx < 0 || idx >= len(l.items) {
		return fmt.Errorf("item index %d out of range [0,%d)", idx, len(l.items))
	}
	l.items = append(l.items[:idx], l.items[idx+1:]...)
	return nil
}

// SetCurrency assigns the currency code to every item.
func (l *Ledger) SetCurrency(code string) {
	for i := range l.items {
		l.items[i].Currency = code
	}
}

// StampDate sets date on every item whose receipt date is empty.
func (l *Ledger) StampDate(date string) {
	for i := range l.items {
		if l.items[i].ReceiptDate == "" {
			l.items[i].ReceiptDate = date
		}
	}
}

// ExpandByQuantity emits floor(quantity) copies of each item (minimum one),
// with the copy's quantity reset to one. Both sinks consume this same
// expansion so the spreadsheet and the database stay row-for-row consistent.
func (l *Ledger) ExpandByQuantity() []entity.LineItem {
	one := decimal.NewFromInt(1)
	var rows []entity.LineItem
	for _, it := range l.items {
		n := it.Quantity.IntPart()
		if n < 1 {
			n = 1
		}
		row := it
		row.Quantity = one
		for i := int64(0); i < n; i++ {
			rows = append(rows, row)
		}
	}
	return rows
}
