package recipe

import (
	"Foodgram-Backend/domain"
	"strconv"
	"strings"
)

const (
	ShoppingListFileName    = "shopping_list.txt"
	ShoppingListContentType = "text/plain; charset=utf-8"
)

// RenderShoppingList writes the header, a blank line and one
// "name (unit) - total" line per item in the given order. An empty list
// renders as the header line alone.
func RenderShoppingList(items []domain.ShoppingListItem) string {
	var b strings.Builder
	b.WriteString(domain.ShoppingListHeader)
	b.WriteString("\n")
	if len(items) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString(item.Name)
		b.WriteString(" (")
		b.WriteString(item.MeasurementUnit)
		b.WriteString(") - ")
		b.WriteString(strconv.Itoa(item.Total))
		b.WriteString("\n")
	}
	return b.String()
}
