package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Persistence est le port de sauvegarde du panier : un seul enregistrement
// sérialisé (articles + coupon), un seul chemin de lecture/écriture.
type Persistence interface {
	// Load retourne nil (sans erreur) quand aucun panier n'est persisté.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
}

// cartTTL : un panier abandonné expire au bout de 30 jours.
const cartTTL = 30 * 24 * time.Hour

// RedisPersistence persiste le panier d'un utilisateur sous une seule clé
// Redis "cart:<userID>". Chaque sauvegarde notifie le canal éponyme pour la
// synchronisation temps réel (websocket).
type RedisPersistence struct {
	client *redis.Client
	key    string
}

func NewRedisPersistence(client *redis.Client, userID string) *RedisPersistence {
	return &RedisPersistence{
		client: client,
		key:    "cart:" + userID,
	}
}

func (r *RedisPersistence) Load(ctx context.Context) (*State, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil // pas de panier = panier vide
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier Redis: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	return &state, nil
}

func (r *RedisPersistence) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("sérialisation panier: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, cartTTL).Err(); err != nil {
		return fmt.Errorf("écriture panier Redis: %w", err)
	}

	// Notification best-effort pour les clients websocket connectés.
	r.client.Publish(ctx, r.key, "updated")
	return nil
}
