package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Coupon est une règle de remise nommée. La table des coupons est la source
// de vérité ; MaxRedemptions est porté par la donnée mais aucun compteur
// d'utilisation n'est décompté (nombre d'utilisations illimité en pratique).
type Coupon struct {
	Code           string  `json:"code"`
	Discount       int     `json:"discount"` // pourcentage 0-100
	MinAmount      float64 `json:"min_amount"`
	MaxRedemptions int     `json:"max_redemptions"`
}

var (
	// ErrCouponNotFound : le code n'existe pas dans la table.
	ErrCouponNotFound = errors.New("code coupon invalide")

	// ErrInvalidSubtotal : le sous-total fourni n'est pas un montant valide.
	ErrInvalidSubtotal = errors.New("sous-total invalide")
)

// MinimumNotMetError : le sous-total n'atteint pas le minimum du coupon.
// Porte le minimum requis pour l'affichage.
type MinimumNotMetError struct {
	Minimum float64
}

func (e *MinimumNotMetError) Error() string {
	return fmt.Sprintf("montant minimum requis: %.2f€", e.Minimum)
}

// Validator valide un code coupon contre un sous-total et retourne le
// pourcentage de remise. La variante distante suspend l'appelant le temps
// de l'aller-retour réseau, d'où le context.
type Validator interface {
	Validate(ctx context.Context, code string, subtotal float64) (float64, error)
}

// Table est le validateur local : une table fixe en mémoire, sans état
// partagé et sans effet de bord.
type Table struct {
	entries map[string]Coupon
}

// NewTable construit une table de coupons. La recherche est insensible à la
// casse : les codes sont normalisés en majuscules.
func NewTable(coupons ...Coupon) *Table {
	entries := make(map[string]Coupon, len(coupons))
	for _, c := range coupons {
		c.Code = strings.ToUpper(c.Code)
		entries[c.Code] = c
	}
	return &Table{entries: entries}
}

// DefaultTable retourne la table de coupons de la boutique.
func DefaultTable() *Table {
	return NewTable(
		Coupon{Code: "WELCOME10", Discount: 10, MinAmount: 0, MaxRedemptions: 1000},
		Coupon{Code: "SOLDES15", Discount: 15, MinAmount: 50, MaxRedemptions: 500},
		Coupon{Code: "VIP25", Discount: 25, MinAmount: 100, MaxRedemptions: 100},
	)
}

// Validate implémente Validator.
func (t *Table) Validate(_ context.Context, code string, subtotal float64) (float64, error) {
	if code == "" {
		return 0, ErrCouponNotFound
	}
	if subtotal < 0 || math.IsNaN(subtotal) || math.IsInf(subtotal, 0) {
		return 0, ErrInvalidSubtotal
	}

	coupon, ok := t.entries[strings.ToUpper(code)]
	if !ok {
		return 0, ErrCouponNotFound
	}

	if subtotal < coupon.MinAmount {
		return 0, &MinimumNotMetError{Minimum: coupon.MinAmount}
	}

	return float64(coupon.Discount), nil
}

// RemoteValidator interroge le service de coupons via HTTP. Contrat :
// GET {base}/validate?code=X&total=Y → 200 {"discount": n} ou un corps
// d'erreur {"error": "..."} en 400/404. Un timeout explicite est imposé
// pour ne pas suspendre indéfiniment l'action utilisateur en cours.
type RemoteValidator struct {
	BaseURL string
	Client  *http.Client
	Timeout time.Duration
}

func (r *RemoteValidator) Validate(ctx context.Context, code string, subtotal float64) (float64, error) {
	if code == "" {
		return 0, ErrCouponNotFound
	}

	timeout := r.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := fmt.Sprintf("%s/validate?code=%s&total=%s",
		strings.TrimRight(r.BaseURL, "/"),
		url.QueryEscape(strings.ToUpper(code)),
		url.QueryEscape(fmt.Sprintf("%.2f", subtotal)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("service coupons injoignable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body struct {
			Discount float64 `json:"discount"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return 0, fmt.Errorf("réponse service coupons invalide: %w", err)
		}
		return body.Discount, nil
	case http.StatusNotFound:
		return 0, ErrCouponNotFound
	default:
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return 0, errors.New(body.Error)
		}
		return 0, fmt.Errorf("service coupons: statut %d", resp.StatusCode)
	}
}
