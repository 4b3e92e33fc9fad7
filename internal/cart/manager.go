package cart

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Manager détient un Store par utilisateur. Il appartient à la racine de
// composition et est injecté dans les handlers. Chaque store est réhydraté
// depuis Redis une seule fois, avant d'accepter la moindre mutation.
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*Store
	redis     *redis.Client
	validator Validator
}

func NewManager(client *redis.Client, validator Validator) *Manager {
	return &Manager{
		stores:    make(map[string]*Store),
		redis:     client,
		validator: validator,
	}
}

// Store retourne le panier de l'utilisateur, en le réhydratant au premier
// accès. Un échec de lecture Redis est remonté : on ne mute pas un panier
// dont on n'a pas pu charger l'état.
func (m *Manager) Store(ctx context.Context, userID string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[userID]; ok {
		return store, nil
	}

	store := NewStore(NewRedisPersistence(m.redis, userID), m.validator)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}

	m.stores[userID] = store
	return store, nil
}

// Validator expose le validateur de coupons partagé par tous les paniers.
func (m *Manager) Validator() Validator {
	return m.validator
}
