package cart

import (
	"context"
	"errors"
	"log"
	"sync"
)

var (
	// ErrValidationSuperseded : le panier a été vidé pendant qu'une
	// validation de coupon était en vol. Le résultat est abandonné.
	ErrValidationSuperseded = errors.New("panier modifié pendant la validation")
)

// Store est l'unique source de vérité du contenu d'un panier. Il est
// construit par la racine de composition et injecté dans les handlers,
// jamais exposé en singleton de package. La persistance est un port
// explicite : l'état en mémoire reste autoritaire même si l'écriture
// échoue (durabilité dégradée, fonctionnement intact).
type Store struct {
	mu        sync.Mutex
	state     State
	persist   Persistence
	validator Validator

	// epoch est incrémenté par Clear. Une validation de coupon partie
	// avant un Clear ne doit pas réappliquer sa remise sur le panier vidé.
	epoch uint64
}

// NewStore crée un panier vide. Appeler Load avant toute mutation pour
// réhydrater l'état persisté.
func NewStore(persist Persistence, validator Validator) *Store {
	return &Store{persist: persist, validator: validator}
}

// Load réhydrate l'état depuis la persistance. Une clé absente vaut
// panier vide, pas une erreur.
func (s *Store) Load(ctx context.Context) error {
	state, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if state != nil {
		s.state = *state
	}
	return nil
}

// AddLine ajoute un article au panier. Un produit épuisé (plafond ≤ 0) est
// refusé sans toucher l'état, et une quantité ≤ 0 retire la ligne au lieu
// de la conserver à zéro. Si une ligne avec la même clé (produit, taille,
// couleur) existe déjà, les quantités sont cumulées et plafonnées au stock
// disponible, jamais rejetées.
func (s *Store) AddLine(ctx context.Context, line Line) AddResult {
	// Une quantité ≤ 0 vaut retrait, comme pour SetQuantity : la ligne
	// existante est supprimée, jamais conservée à zéro.
	if line.Quantity <= 0 {
		s.RemoveLine(ctx, line.ProductID, line.Size, line.Color)
		return AddResult{Status: StatusRemoved, Line: line}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Plafond nul ou négatif = produit épuisé. Les appelants sans suivi de
	// stock passent UnlimitedStock.
	if line.MaxStock <= 0 {
		return AddResult{Status: StatusOutOfStock, Line: line}
	}

	k := line.key()
	for i := range s.state.Items {
		if s.state.Items[i].key() != k {
			continue
		}

		existing := &s.state.Items[i]
		newQuantity := existing.Quantity + line.Quantity
		status := StatusUpdated
		if newQuantity > line.MaxStock {
			newQuantity = line.MaxStock
			status = StatusStockLimited
		}
		existing.Quantity = newQuantity
		existing.MaxStock = line.MaxStock
		existing.Price = line.Price

		s.save(ctx)
		return AddResult{Status: status, Line: *existing, MaxStock: line.MaxStock}
	}

	status := StatusAdded
	if line.Quantity > line.MaxStock {
		line.Quantity = line.MaxStock
		status = StatusStockLimited
	}
	s.state.Items = append(s.state.Items, line)
	s.save(ctx)
	return AddResult{Status: status, Line: line, MaxStock: line.MaxStock}
}

// RemoveLine supprime la ligne correspondante si elle existe. L'absence
// n'est pas une erreur.
func (s *Store) RemoveLine(ctx context.Context, productID, size, color string) RemoveResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{productID: productID, size: size, color: color}
	for i := range s.state.Items {
		if s.state.Items[i].key() != k {
			continue
		}
		name := s.state.Items[i].Name
		s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
		s.save(ctx)
		return RemoveResult{Removed: true, Name: name}
	}
	return RemoveResult{Removed: false}
}

// SetQuantity fixe la quantité d'une ligne. Une quantité ≤ 0 équivaut à
// RemoveLine ; sinon la quantité est plafonnée au stock de la ligne.
func (s *Store) SetQuantity(ctx context.Context, productID, size, color string, quantity int) RemoveResult {
	if quantity <= 0 {
		return s.RemoveLine(ctx, productID, size, color)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{productID: productID, size: size, color: color}
	for i := range s.state.Items {
		if s.state.Items[i].key() != k {
			continue
		}
		line := &s.state.Items[i]
		if line.MaxStock > 0 && quantity > line.MaxStock {
			quantity = line.MaxStock
		}
		line.Quantity = quantity
		s.save(ctx)
		return RemoveResult{Removed: false, Name: line.Name}
	}
	return RemoveResult{Removed: false}
}

// Clear vide le panier et retire le coupon appliqué, en une seule écriture.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	s.epoch++
	s.save(ctx)
}

// ApplyCoupon valide le code contre le sous-total courant puis applique la
// remise. Le mutex est relâché pendant la validation (elle peut être un
// appel réseau) : l'utilisateur peut continuer à modifier son panier. Si le
// panier a été vidé entre-temps, le résultat est abandonné.
func (s *Store) ApplyCoupon(ctx context.Context, code string) (AppliedCoupon, error) {
	s.mu.Lock()
	subtotal := ComputeTotals(s.state).Subtotal
	epoch := s.epoch
	s.mu.Unlock()

	discount, err := s.validator.Validate(ctx, code, subtotal)
	if err != nil {
		return AppliedCoupon{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return AppliedCoupon{}, ErrValidationSuperseded
	}

	applied := AppliedCoupon{Code: code, Discount: discount}
	s.state.Coupon = &applied
	s.save(ctx)
	return applied, nil
}

// RemoveCoupon retire le coupon appliqué. Les lignes du panier restent
// intactes.
func (s *Store) RemoveCoupon(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Coupon = nil
	s.save(ctx)
}

// State retourne une copie de l'état courant (snapshot pour le checkout).
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := State{Items: make([]Line, len(s.state.Items))}
	copy(snapshot.Items, s.state.Items)
	if s.state.Coupon != nil {
		coupon := *s.state.Coupon
		snapshot.Coupon = &coupon
	}
	return snapshot
}

// Lines retourne une copie des lignes, dans l'ordre d'insertion.
func (s *Store) Lines() []Line {
	return s.State().Items
}

// Totals recalcule les montants dérivés depuis l'état courant.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.state)
}

// TotalQuantity est la somme des quantités de toutes les lignes.
func (s *Store) TotalQuantity() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	for _, item := range s.state.Items {
		total += item.Quantity
	}
	return total
}

// LineCount est le nombre de lignes distinctes.
func (s *Store) LineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.Items)
}

// save persiste l'état complet. Un échec d'écriture est loggé et avalé :
// l'état en mémoire reste autoritaire pour la session.
func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, &s.state); err != nil {
		log.Printf("⚠️ Échec sauvegarde panier (état mémoire conservé): %v", err)
	}
}
