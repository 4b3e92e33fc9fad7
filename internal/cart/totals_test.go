package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  Totals
	}{
		{
			name:  "panier vide",
			state: State{},
			want:  Totals{},
		},
		{
			name: "sans coupon",
			state: State{Items: []Line{
				{Price: 10, Quantity: 2},
				{Price: 5.5, Quantity: 4},
			}},
			want: Totals{
				Subtotal:           42,
				DiscountedSubtotal: 42,
				TaxAmount:          3.78,
				GrandTotal:         45.78,
			},
		},
		{
			name: "coupon 10% sur 40€",
			state: State{
				Items:  []Line{{Price: 10, Quantity: 4}},
				Coupon: &AppliedCoupon{Code: "WELCOME10", Discount: 10},
			},
			want: Totals{
				Subtotal:           40,
				DiscountAmount:     4,
				DiscountedSubtotal: 36,
				TaxAmount:          3.24,
				GrandTotal:         39.24,
			},
		},
		{
			name: "coupon 25%",
			state: State{
				Items:  []Line{{Price: 50, Quantity: 3}},
				Coupon: &AppliedCoupon{Code: "VIP25", Discount: 25},
			},
			want: Totals{
				Subtotal:           150,
				DiscountAmount:     37.5,
				DiscountedSubtotal: 112.5,
				TaxAmount:          10.125,
				GrandTotal:         122.625,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.state)
			assert.InDelta(t, tt.want.Subtotal, got.Subtotal, 1e-9)
			assert.InDelta(t, tt.want.DiscountAmount, got.DiscountAmount, 1e-9)
			assert.InDelta(t, tt.want.DiscountedSubtotal, got.DiscountedSubtotal, 1e-9)
			assert.InDelta(t, tt.want.TaxAmount, got.TaxAmount, 1e-9)
			assert.InDelta(t, tt.want.GrandTotal, got.GrandTotal, 1e-9)
			assert.Equal(t, 0.0, got.Shipping, "la livraison est toujours gratuite")
		})
	}
}

func TestGrandTotalEqualsDiscountedTimesTaxFactor(t *testing.T) {
	states := []State{
		{Items: []Line{{Price: 19.99, Quantity: 3}}},
		{Items: []Line{{Price: 7.25, Quantity: 1}, {Price: 120, Quantity: 2}},
			Coupon: &AppliedCoupon{Discount: 15}},
		{Items: []Line{{Price: 0.01, Quantity: 99}},
			Coupon: &AppliedCoupon{Discount: 100}},
	}

	for _, s := range states {
		totals := ComputeTotals(s)
		assert.GreaterOrEqual(t, totals.GrandTotal, totals.DiscountedSubtotal)
		assert.InDelta(t, totals.DiscountedSubtotal*(1+TaxRate), totals.GrandTotal, 1e-9)
		assert.InDelta(t, totals.DiscountedSubtotal+totals.TaxAmount, totals.GrandTotal, 1e-9)
	}
}
