package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateJSONRoundTrip(t *testing.T) {
	before := State{
		Items: []Line{
			{ProductID: "p1", Name: "T-shirt Velours", Price: 19.99, Quantity: 2,
				Size: "M", Color: "Negro", ImageURL: "https://cdn.velours.fr/p1.jpg", MaxStock: 5},
			{ProductID: "p2", Name: "Hoodie Oversize", Price: 49.5, Quantity: 1,
				Size: "L", Color: "Blanco", MaxStock: UnlimitedStock},
		},
		Coupon: &AppliedCoupon{Code: "WELCOME10", Discount: 10},
	}

	data, err := json.Marshal(&before)
	require.NoError(t, err)

	var after State
	require.NoError(t, json.Unmarshal(data, &after))

	assert.Equal(t, before, after)
	assert.InDelta(t, ComputeTotals(before).GrandTotal, ComputeTotals(after).GrandTotal, 1e-9)
}

func TestStateJSONRoundTrip_AbsentCouponOmitted(t *testing.T) {
	data, err := json.Marshal(&State{Items: []Line{tshirt(1, 5)}})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "coupon")

	var after State
	require.NoError(t, json.Unmarshal(data, &after))
	assert.Nil(t, after.Coupon)
}

// Le panier survit à un Clear via l'enregistrement persisté : sérialiser
// l'état, vider, puis réhydrater un nouveau Store depuis l'enregistrement
// reconstruit les mêmes lignes et le même coupon.
func TestSerializedRecordRebuildsEquivalentCart(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(3, 5))
	autre := tshirt(1, UnlimitedStock)
	autre.ProductID = "p2"
	store.AddLine(ctx, autre)
	_, err := store.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)

	data, err := json.Marshal(store.State())
	require.NoError(t, err)
	store.Clear(ctx)
	require.Equal(t, 0, store.LineCount())

	var saved State
	require.NoError(t, json.Unmarshal(data, &saved))
	restored := NewStore(&memPersistence{loadState: &saved}, DefaultTable())
	require.NoError(t, restored.Load(ctx))

	assert.Equal(t, saved.Items, restored.Lines())
	require.NotNil(t, restored.State().Coupon)
	assert.Equal(t, "WELCOME10", restored.State().Coupon.Code)
	assert.InDelta(t, restored.Totals().GrandTotal, ComputeTotals(saved).GrandTotal, 1e-9)
}
