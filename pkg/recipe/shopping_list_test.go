package recipe

import (
	"Foodgram-Backend/domain"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderShoppingList(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.ShoppingListItem
		want  string
	}{
		{
			name: "empty cart",
			want: "Shopping list:\n",
		},
		{
			name: "one line per ingredient and unit",
			items: []domain.ShoppingListItem{
				{Name: "flour", MeasurementUnit: "g", Total: 500},
				{Name: "milk", MeasurementUnit: "cup", Total: 1},
				{Name: "milk", MeasurementUnit: "ml", Total: 200},
			},
			want: "Shopping list:\n\nflour (g) - 500\nmilk (cup) - 1\nmilk (ml) - 200\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderShoppingList(tt.items))
		})
	}
}
