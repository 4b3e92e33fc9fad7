package cart

// Constantes métier fixes.
const (
	// TaxRate est le taux de TVA appliqué au sous-total après remise.
	TaxRate = 0.09

	// ShippingCost : la livraison est gratuite, sans condition de montant.
	ShippingCost = 0.0
)

// Totals regroupe les montants dérivés du panier. Ils sont recalculés à
// chaque lecture depuis l'état courant, jamais stockés.
type Totals struct {
	Subtotal           float64 `json:"subtotal"`
	DiscountAmount     float64 `json:"discount_amount"`
	DiscountedSubtotal float64 `json:"discounted_subtotal"`
	TaxAmount          float64 `json:"tax_amount"`
	Shipping           float64 `json:"shipping"`
	GrandTotal         float64 `json:"grand_total"`
}

// ComputeTotals dérive tous les montants d'un état de panier. Fonction pure,
// côté affichage uniquement : le montant facturé est recalculé par le
// checkout depuis les prix en base.
func ComputeTotals(s State) Totals {
	var subtotal float64
	for _, item := range s.Items {
		subtotal += item.Price * float64(item.Quantity)
	}

	var discount float64
	if s.Coupon != nil {
		discount = subtotal * s.Coupon.Discount / 100
	}

	discounted := subtotal - discount
	tax := discounted * TaxRate

	return Totals{
		Subtotal:           subtotal,
		DiscountAmount:     discount,
		DiscountedSubtotal: discounted,
		TaxAmount:          tax,
		Shipping:           ShippingCost,
		GrandTotal:         discounted + tax + ShippingCost,
	}
}
