package cart

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableValidate(t *testing.T) {
	table := DefaultTable()
	ctx := context.Background()

	tests := []struct {
		name     string
		code     string
		subtotal float64
		discount float64
		wantErr  error
	}{
		{"welcome sans minimum", "WELCOME10", 40, 10, nil},
		{"insensible à la casse", "welcome10", 40, 10, nil},
		{"casse mixte", "Vip25", 150, 25, nil},
		{"code inconnu", "NOEL50", 40, 0, ErrCouponNotFound},
		{"code vide", "", 40, 0, ErrCouponNotFound},
		{"sous-total négatif", "WELCOME10", -1, 0, ErrInvalidSubtotal},
		{"soldes au seuil exact", "SOLDES15", 50, 15, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			discount, err := table.Validate(ctx, tt.code, tt.subtotal)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.discount, discount)
		})
	}
}

func TestTableValidate_MinimumNotMet(t *testing.T) {
	table := DefaultTable()

	_, err := table.Validate(context.Background(), "VIP25", 40)

	var minErr *MinimumNotMetError
	require.ErrorAs(t, err, &minErr)
	assert.Equal(t, 100.0, minErr.Minimum)
	assert.Contains(t, minErr.Error(), "100.00")
}

func TestTableValidate_NonFiniteSubtotal(t *testing.T) {
	table := DefaultTable()

	for _, subtotal := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := table.Validate(context.Background(), "WELCOME10", subtotal)
		assert.ErrorIs(t, err, ErrInvalidSubtotal)
	}
}

func TestTableValidate_NoRedemptionCounter(t *testing.T) {
	// MaxRedemptions est porté par la donnée mais jamais décompté : le même
	// code reste valide après un nombre arbitraire de validations.
	table := NewTable(Coupon{Code: "UNIQUE", Discount: 5, MaxRedemptions: 1})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		discount, err := table.Validate(ctx, "UNIQUE", 20)
		require.NoError(t, err)
		assert.Equal(t, 5.0, discount)
	}
}

// ============================================
// Validateur distant
// ============================================

func TestRemoteValidator_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/validate", r.URL.Path)
		assert.Equal(t, "WELCOME10", r.URL.Query().Get("code"))
		assert.Equal(t, "40.00", r.URL.Query().Get("total"))
		w.Write([]byte(`{"discount": 10}`))
	}))
	defer srv.Close()

	validator := &RemoteValidator{BaseURL: srv.URL}
	discount, err := validator.Validate(context.Background(), "welcome10", 40)

	require.NoError(t, err)
	assert.Equal(t, 10.0, discount)
}

func TestRemoteValidator_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "code coupon invalide"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	validator := &RemoteValidator{BaseURL: srv.URL}
	_, err := validator.Validate(context.Background(), "NOEL50", 40)

	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestRemoteValidator_ErrorBodyReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "montant minimum requis: 100.00€"}`))
	}))
	defer srv.Close()

	validator := &RemoteValidator{BaseURL: srv.URL}
	_, err := validator.Validate(context.Background(), "VIP25", 40)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "montant minimum requis")
}

func TestRemoteValidator_Timeout(t *testing.T) {
	blocked := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer srv.Close()
	defer close(blocked)

	validator := &RemoteValidator{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}
	_, err := validator.Validate(context.Background(), "WELCOME10", 40)

	require.Error(t, err, "la validation distante doit expirer, pas bloquer l'action en cours")
}
