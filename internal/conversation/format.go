package conversation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avelichko/receipty/constants"
	"github.com/avelichko/receipty/internal/entity"
)

// Summary renders the review message: items grouped under
// "Category - Subcategory" headings, one bullet per item with the unit price
// in the selected currency's symbol, and a grand total.
func Summary(items []entity.LineItem, currency string) string {
	if len(items) == 0 {
		return "❌ Не удалось обработать чек. Попробуйте еще раз."
	}

	symbol := constants.CurrencySymbol(currency)

	type group struct {
		key   string
		items []entity.LineItem
	}
	var order []string
	byKey := make(map[string]*group)
	total := decimal.Zero

	for _, it := range items {
		key := it.Category + " - " + it.Subcategory
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			order = append(order, key)
		}
		g.items = append(g.items, it)
		total = total.Add(it.UnitPrice.Mul(it.Quantity))
	}

	var b strings.Builder
	b.WriteString("📋 Обработанные товары:\n\n")
	for _, key := range order {
		b.WriteString("🏷️ " + key + "\n")
		for _, it := range byKey[key].items {
			name := it.TranslatedName
			if name == "" {
				name = it.OriginalName
			}
			fmt.Fprintf(&b, "  • %s (%s)\n", name, it.OriginalName)
			fmt.Fprintf(&b, "    💰 %s %s", it.UnitPrice.StringFixed(2), symbol)
			if !it.Quantity.Equal(decimal.NewFromInt(1)) {
				fmt.Fprintf(&b, " × %s", it.Quantity.String())
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n💰 Итого: %s %s", total.StringFixed(2), symbol)
	return b.String()
}

// SplitMessage chunks a long message to the transport's length ceiling.
func SplitMessage(message string, maxLength int) []string {
	if maxLength <= 0 || len(message) <= maxLength {
		return []string{message}
	}
	var chunks []string
	for len(message) > maxLength {
		cut := maxLength
		// prefer a line boundary so groups are not torn mid-line
		if i := strings.LastIndexByte(message[:maxLength], '\n'); i > 0 {
			cut = i + 1
		}
		chunks = append(chunks, strings.TrimRight(message[:cut], "\n"))
		message = message[cut:]
	}
	if message != "" {
		chunks = append(chunks, message)
	}
	return chunks
}

// optionRows lays out MRU values two per row, with an "Other" escape hatch.
// prefix becomes the callback data namespace ("language", "currency", ...).
func optionRows(values []string, prefix string) [][]Button {
	var rows [][]Button
	var row []Button
	for _, v := range values {
		row = append(row, Button{Label: v, Data: prefix + "_" + v})
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, []Button{{Label: "Other", Data: prefix + "_other"}})
	return rows
}

func actionRows() [][]Button {
	return [][]Button{
		{{Label: "✏️ Редактировать", Data: "action_edit"}},
		{
			{Label: "✅ Подтвердить", Data: "action_confirm"},
			{Label: "❌ Отменить", Data: "action_cancel"},
		},
	}
}

// itemRows is the edit-mode item picker, one numbered button per item.
func itemRows(items []entity.LineItem) [][]Button {
	var rows [][]Button
	for i, it := range items {
		name := it.DisplayName()
		if len(name) > 50 {
			name = name[:47] + "..."
		}
		rows = append(rows, []Button{{
			Label: fmt.Sprintf("%d. %s", i+1, name),
			Data:  fmt.Sprintf("edit_product_%d", i),
		}})
	}
	rows = append(rows, []Button{{Label: "◀️ Назад", Data: "action_back"}})
	return rows
}

func fieldRows() [][]Button {
	return [][]Button{
		{{Label: "🔢 Кол-во", Data: "edit_quantity"}},
		{{Label: "💰 Цена", Data: "edit_price"}},
		{{Label: "❌ Удалить", Data: "edit_delete"}},
		{{Label: "◀️ Назад к списку товаров", Data: "action_back"}},
	}
}

// listRows renders one button per value in a single column, used for the
// taxonomy pickers during manual entry.
func listRows(values []string, prefix string) [][]Button {
	rows := make([][]Button, 0, len(values))
	for _, v := range values {
		rows = append(rows, []Button{{Label: v, Data: prefix + "_" + v}})
	}
	return rows
}
