package pa

import (
	"testing"

	"velours_back_end/internal/cart"

	"github.com/stretchr/testify/assert"
)

func TestAmountInCents(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		cents int64
	}{
		{"montant rond", 40.00, 4000},
		{"deux décimales", 39.24, 3924},
		{"fraction de centime arrondie au-dessus", 32.6891, 3269},
		{"fraction de centime arrondie en dessous", 32.6841, 3268},
		{"panier vide", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.cents, amountInCents(tt.total))
		})
	}
}

// Le montant débité correspond toujours au total calculé côté serveur,
// taxe comprise, même quand la remise produit une fraction de centime.
func TestAmountInCentsMatchesComputedTotals(t *testing.T) {
	state := cart.State{
		Items:  []cart.Line{{Price: 19.99, Quantity: 3}},
		Coupon: &cart.AppliedCoupon{Code: "SOLDES15", Discount: 15},
	}

	totals := cart.ComputeTotals(state)
	// 59.97 − 15% = 50.9745 ; × 1.09 = 55.562205 → 5556 centimes
	assert.Equal(t, int64(5556), amountInCents(totals.GrandTotal))
}
