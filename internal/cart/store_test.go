package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memPersistence enregistre chaque sauvegarde pour vérifier la politique
// de persistance sans Redis.
type memPersistence struct {
	saved     []State
	loadState *State
	loadErr   error
	saveErr   error
}

func (m *memPersistence) Load(_ context.Context) (*State, error) {
	return m.loadState, m.loadErr
}

func (m *memPersistence) Save(_ context.Context, state *State) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	snapshot := State{Items: make([]Line, len(state.Items))}
	copy(snapshot.Items, state.Items)
	if state.Coupon != nil {
		coupon := *state.Coupon
		snapshot.Coupon = &coupon
	}
	m.saved = append(m.saved, snapshot)
	return nil
}

func newTestStore() (*Store, *memPersistence) {
	persist := &memPersistence{}
	store := NewStore(persist, DefaultTable())
	return store, persist
}

func tshirt(quantity, maxStock int) Line {
	return Line{
		ProductID: "p1",
		Name:      "T-shirt Velours",
		Price:     10,
		Quantity:  quantity,
		Size:      "M",
		Color:     "Negro",
		MaxStock:  maxStock,
	}
}

// ============================================
// AddLine
// ============================================

func TestAddLine_NewLine(t *testing.T) {
	store, persist := newTestStore()
	ctx := context.Background()

	res := store.AddLine(ctx, tshirt(2, 5))

	assert.Equal(t, StatusAdded, res.Status)
	assert.Equal(t, 2, res.Line.Quantity)
	assert.Equal(t, 1, store.LineCount())
	assert.Len(t, persist.saved, 1)
}

func TestAddLine_MergeSameKey(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(2, 5))
	res := store.AddLine(ctx, tshirt(2, 5))

	assert.Equal(t, StatusUpdated, res.Status)
	assert.Equal(t, 4, res.Line.Quantity)
	assert.Equal(t, 1, store.LineCount())
	assert.InDelta(t, 40.0, store.Totals().Subtotal, 1e-9)
}

func TestAddLine_ClampToStock(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(2, 5))
	res := store.AddLine(ctx, tshirt(10, 5))

	assert.Equal(t, StatusStockLimited, res.Status)
	assert.Equal(t, 5, res.Line.Quantity)
	assert.Equal(t, 5, res.MaxStock)
}

func TestAddLine_ClampNeverExceedsCeiling(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		store.AddLine(ctx, tshirt(3, 7))
	}

	assert.Equal(t, 7, store.Lines()[0].Quantity)
}

func TestAddLine_OutOfStockRejected(t *testing.T) {
	store, persist := newTestStore()
	ctx := context.Background()

	res := store.AddLine(ctx, tshirt(1, 0))

	assert.Equal(t, StatusOutOfStock, res.Status)
	assert.Equal(t, 0, store.LineCount())
	assert.Empty(t, persist.saved, "un refus ne doit rien persister")
}

func TestAddLine_UnlimitedStockAccumulates(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	quantities := []int{1, 4, 2, 8}
	want := 0
	for _, q := range quantities {
		store.AddLine(ctx, tshirt(q, UnlimitedStock))
		want += q
	}

	assert.Equal(t, want, store.Lines()[0].Quantity)
	assert.Equal(t, want, store.TotalQuantity())
}

func TestAddLine_DistinctVariantsAreDistinctLines(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(1, 5))
	blanc := tshirt(1, 5)
	blanc.Color = "Blanco"
	store.AddLine(ctx, blanc)
	grand := tshirt(1, 5)
	grand.Size = "XL"
	store.AddLine(ctx, grand)

	assert.Equal(t, 3, store.LineCount())
	assert.Equal(t, 3, store.TotalQuantity())
}

func TestAddLine_InsertionOrderPreserved(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	for _, id := range []string{"p3", "p1", "p2"} {
		line := tshirt(1, 5)
		line.ProductID = id
		store.AddLine(ctx, line)
	}
	// une mise à jour de quantité ne réordonne pas
	store.AddLine(ctx, func() Line { l := tshirt(1, 5); l.ProductID = "p1"; return l }())

	lines := store.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "p3", lines[0].ProductID)
	assert.Equal(t, "p1", lines[1].ProductID)
	assert.Equal(t, "p2", lines[2].ProductID)
}

// ============================================
// RemoveLine / SetQuantity
// ============================================

func TestRemoveLine(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(2, 5))
	res := store.RemoveLine(ctx, "p1", "M", "Negro")

	assert.True(t, res.Removed)
	assert.Equal(t, "T-shirt Velours", res.Name)
	assert.Equal(t, 0, store.LineCount())
	assert.InDelta(t, 0.0, store.Totals().Subtotal, 1e-9)
}

func TestRemoveLine_AbsentIsNoop(t *testing.T) {
	store, persist := newTestStore()
	ctx := context.Background()

	res := store.RemoveLine(ctx, "inconnu", "M", "Negro")

	assert.False(t, res.Removed)
	assert.Empty(t, persist.saved)
}

func TestRemoveThenAddIsFreshLine(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))
	store.RemoveLine(ctx, "p1", "M", "Negro")
	res := store.AddLine(ctx, tshirt(2, 5))

	assert.Equal(t, StatusAdded, res.Status)
	assert.Equal(t, 2, res.Line.Quantity, "aucune quantité résiduelle après suppression")
}

func TestSetQuantity_ClampsToStock(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(1, 5))
	store.SetQuantity(ctx, "p1", "M", "Negro", 99)

	assert.Equal(t, 5, store.Lines()[0].Quantity)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	viaSet, _ := newTestStore()
	viaSet.AddLine(ctx, tshirt(2, 5))
	viaSet.SetQuantity(ctx, "p1", "M", "Negro", 0)

	viaRemove, _ := newTestStore()
	viaRemove.AddLine(ctx, tshirt(2, 5))
	viaRemove.RemoveLine(ctx, "p1", "M", "Negro")

	assert.Equal(t, viaRemove.Lines(), viaSet.Lines())
	assert.Equal(t, 0, viaSet.LineCount())
}

func TestAddLine_NonPositiveQuantityRemoves(t *testing.T) {
	store, persist := newTestStore()
	ctx := context.Background()

	res := store.AddLine(ctx, tshirt(0, 5))
	assert.Equal(t, StatusRemoved, res.Status)
	assert.Equal(t, 0, store.LineCount())
	assert.Empty(t, persist.saved, "rien à retirer, rien à persister")

	store.AddLine(ctx, tshirt(2, 5))
	res = store.AddLine(ctx, tshirt(-2, 5))

	assert.Equal(t, StatusRemoved, res.Status)
	assert.Equal(t, 0, store.LineCount(), "aucune ligne à quantité nulle n'est conservée")
	assert.Empty(t, persist.saved[len(persist.saved)-1].Items)
}

// ============================================
// Clear / coupon
// ============================================

func TestClear_EmptiesLinesAndCoupon(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))
	_, err := store.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)

	store.Clear(ctx)

	state := store.State()
	assert.Empty(t, state.Items)
	assert.Nil(t, state.Coupon)
	assert.InDelta(t, 0.0, store.Totals().GrandTotal, 1e-9)
}

func TestRemoveLine_KeepsCouponApplied(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))
	_, err := store.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)

	store.RemoveLine(ctx, "p1", "M", "Negro")

	state := store.State()
	assert.Empty(t, state.Items)
	require.NotNil(t, state.Coupon, "le coupon n'est retiré que par Clear ou RemoveCoupon")
	assert.Equal(t, "WELCOME10", state.Coupon.Code)
}

func TestApplyCoupon_Success(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5)) // sous-total 40€
	applied, err := store.ApplyCoupon(ctx, "WELCOME10")

	require.NoError(t, err)
	assert.Equal(t, 10.0, applied.Discount)

	totals := store.Totals()
	assert.InDelta(t, 4.0, totals.DiscountAmount, 1e-9)
	assert.InDelta(t, 36.0, totals.DiscountedSubtotal, 1e-9)
	assert.InDelta(t, 3.24, totals.TaxAmount, 1e-9)
	assert.InDelta(t, 39.24, totals.GrandTotal, 1e-9)
}

func TestApplyCoupon_MinimumNotMetLeavesStateUnchanged(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5)) // 40€, VIP25 exige 100€
	before := store.Totals()

	_, err := store.ApplyCoupon(ctx, "VIP25")

	var minErr *MinimumNotMetError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 100.0, minErr.Minimum)
	assert.Nil(t, store.State().Coupon)
	assert.Equal(t, before, store.Totals())
}

func TestRemoveCoupon_RestoresGrandTotal(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))
	before := store.Totals().GrandTotal

	_, err := store.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)
	store.RemoveCoupon(ctx)

	assert.InDelta(t, before, store.Totals().GrandTotal, 1e-9)
	assert.Equal(t, 1, store.LineCount())
}

// slowValidator signale son entrée puis bloque jusqu'à la fermeture de
// release, pour simuler une validation réseau qui se termine après
// d'autres mutations du panier.
type slowValidator struct {
	entered chan struct{}
	release chan struct{}
}

func newSlowValidator() *slowValidator {
	return &slowValidator{entered: make(chan struct{}), release: make(chan struct{})}
}

func (v *slowValidator) Validate(_ context.Context, _ string, _ float64) (float64, error) {
	close(v.entered)
	<-v.release
	return 10, nil
}

func TestApplyCoupon_DiscardedWhenCartClearedInFlight(t *testing.T) {
	validator := newSlowValidator()
	store := NewStore(&memPersistence{}, validator)
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))

	done := make(chan error, 1)
	go func() {
		_, err := store.ApplyCoupon(ctx, "WELCOME10")
		done <- err
	}()

	<-validator.entered
	store.Clear(ctx) // le panier est vidé pendant que la validation est en vol
	close(validator.release)

	err := <-done
	assert.ErrorIs(t, err, ErrValidationSuperseded)
	assert.Nil(t, store.State().Coupon, "le résultat périmé est abandonné en silence")
}

func TestApplyCoupon_OtherMutationsDoNotDiscard(t *testing.T) {
	validator := newSlowValidator()
	store := NewStore(&memPersistence{}, validator)
	ctx := context.Background()

	store.AddLine(ctx, tshirt(4, 5))

	done := make(chan error, 1)
	go func() {
		_, err := store.ApplyCoupon(ctx, "WELCOME10")
		done <- err
	}()

	// ajouter ou retirer des lignes pendant la validation est permis
	<-validator.entered
	store.AddLine(ctx, func() Line { l := tshirt(1, 5); l.ProductID = "p2"; return l }())
	close(validator.release)

	require.NoError(t, <-done)
	require.NotNil(t, store.State().Coupon)
}

// ============================================
// Persistance
// ============================================

func TestPersistenceFailureKeepsInMemoryState(t *testing.T) {
	persist := &memPersistence{saveErr: errors.New("quota dépassé")}
	store := NewStore(persist, DefaultTable())
	ctx := context.Background()

	res := store.AddLine(ctx, tshirt(2, 5))

	assert.Equal(t, StatusAdded, res.Status)
	assert.Equal(t, 1, store.LineCount(), "l'état mémoire reste autoritaire")
}

func TestLoadRehydratesPersistedState(t *testing.T) {
	saved := State{
		Items:  []Line{tshirt(3, 5)},
		Coupon: &AppliedCoupon{Code: "WELCOME10", Discount: 10},
	}
	persist := &memPersistence{loadState: &saved}
	store := NewStore(persist, DefaultTable())

	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, saved.Items, store.Lines())
	require.NotNil(t, store.State().Coupon)
	assert.Equal(t, 10.0, store.State().Coupon.Discount)
}

func TestLoadAbsentKeyIsEmptyCart(t *testing.T) {
	store := NewStore(&memPersistence{}, DefaultTable())

	require.NoError(t, store.Load(context.Background()))

	assert.Equal(t, 0, store.LineCount())
	assert.Nil(t, store.State().Coupon)
}

func TestEveryMutationPersistsWholeRecord(t *testing.T) {
	store, persist := newTestStore()
	ctx := context.Background()

	store.AddLine(ctx, tshirt(2, 5))
	store.SetQuantity(ctx, "p1", "M", "Negro", 3)
	_, err := store.ApplyCoupon(ctx, "WELCOME10")
	require.NoError(t, err)
	store.RemoveCoupon(ctx)
	store.Clear(ctx)

	require.Len(t, persist.saved, 5)
	// la dernière écriture est l'enregistrement complet, vide et sans coupon
	last := persist.saved[len(persist.saved)-1]
	assert.Empty(t, last.Items)
	assert.Nil(t, last.Coupon)
	// l'application du coupon a bien persisté articles et coupon ensemble
	assert.NotNil(t, persist.saved[2].Coupon)
	assert.Len(t, persist.saved[2].Items, 1)
}
