package cart

// UnlimitedStock est le plafond utilisé quand le stock d'un produit n'est
// pas suivi : l'absence de plafond est traitée comme une grande constante.
const UnlimitedStock = 1<<31 - 1

// Line représente un article du panier, identifié par le triplet
// (product_id, taille, couleur). Deux lignes avec le même produit mais une
// taille ou une couleur différente sont des lignes distinctes.
type Line struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	ImageURL  string  `json:"image_url"`
	MaxStock  int     `json:"max_stock"` // plafond de quantité ; UnlimitedStock si non suivi, ≤ 0 = épuisé
}

// key identifie une ligne de façon unique dans le panier.
type key struct {
	productID string
	size      string
	color     string
}

func (l Line) key() key {
	return key{productID: l.ProductID, size: l.Size, color: l.Color}
}

// AppliedCoupon est le coupon actuellement appliqué au panier.
type AppliedCoupon struct {
	Code     string  `json:"code"`
	Discount float64 `json:"discount"` // pourcentage 0-100
}

// State est l'état complet du panier, sérialisé tel quel en un seul
// enregistrement (articles + coupon ensemble, jamais en deux clés séparées).
type State struct {
	Items  []Line         `json:"items"`
	Coupon *AppliedCoupon `json:"coupon,omitempty"`
}

// AddStatus décrit le résultat d'un ajout au panier.
type AddStatus string

const (
	StatusAdded        AddStatus = "added"         // nouvelle ligne créée
	StatusUpdated      AddStatus = "updated"       // quantité cumulée sur une ligne existante
	StatusStockLimited AddStatus = "stock_limited" // quantité plafonnée au stock disponible
	StatusOutOfStock   AddStatus = "out_of_stock"  // produit en rupture, ajout refusé
	StatusRemoved      AddStatus = "removed"       // quantité ≤ 0, la ligne est retirée
)

// AddResult est retourné par AddLine. Les dépassements de stock ne sont
// jamais des erreurs : la quantité est plafonnée et le statut l'indique.
type AddResult struct {
	Status   AddStatus `json:"status"`
	Line     Line      `json:"line"`
	MaxStock int       `json:"max_stock,omitempty"` // renseigné pour stock_limited
}

// RemoveResult est retourné par RemoveLine.
type RemoveResult struct {
	Removed bool   `json:"removed"`
	Name    string `json:"name,omitempty"`
}
