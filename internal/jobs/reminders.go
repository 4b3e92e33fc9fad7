package jobs

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"velours_back_end/internal/cart"
	"velours_back_end/internal/database"
	"velours_back_end/internal/utils"

	"github.com/redis/go-redis/v9"
)

const (
	// Un panier est considéré abandonné après 24h sans modification.
	abandonedAfter = 24 * time.Hour

	// Un seul rappel par panier : la clé de garde expire avec le panier.
	reminderGuardTTL = 30 * 24 * time.Hour

	scanInterval = 6 * time.Hour
)

// StartCartReminders lance la boucle de rappel des paniers abandonnés.
// S'arrête quand le context est annulé.
func StartCartReminders(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()

		log.Println("⏰ Job rappels paniers abandonnés démarré")
		for {
			select {
			case <-ctx.Done():
				log.Println("⏰ Job rappels paniers abandonnés arrêté")
				return
			case <-ticker.C:
				runCartReminderPass(ctx)
			}
		}
	}()
}

func runCartReminderPass(ctx context.Context) {
	var cursor uint64
	var sent int

	for {
		keys, next, err := database.Redis.Scan(ctx, cursor, "cart:*", 100).Result()
		if err != nil {
			log.Printf("⚠️ Échec scan paniers: %v", err)
			return
		}

		for _, key := range keys {
			if remindCart(ctx, key) {
				sent++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if sent > 0 {
		log.Printf("📧 %d rappel(s) panier abandonné envoyé(s)", sent)
	}
}

// remindCart envoie au plus un rappel pour le panier derrière la clé donnée.
// L'âge du panier est déduit du TTL restant : il est remis à 30 jours à
// chaque sauvegarde, donc (TTL initial - TTL restant) = temps d'inactivité.
func remindCart(ctx context.Context, key string) bool {
	ttl, err := database.Redis.TTL(ctx, key).Result()
	if err != nil || ttl <= 0 {
		return false
	}

	idle := 30*24*time.Hour - ttl
	if idle < abandonedAfter {
		return false
	}

	userID := strings.TrimPrefix(key, "cart:")

	guardKey := "cart_reminder:" + userID
	ok, err := database.Redis.SetNX(ctx, guardKey, "1", reminderGuardTTL).Result()
	if err != nil || !ok {
		return false // déjà rappelé
	}

	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("⚠️ Échec lecture panier %s: %v", key, err)
		}
		return false
	}

	var state cart.State
	if err := json.Unmarshal([]byte(data), &state); err != nil || len(state.Items) == 0 {
		return false
	}

	session, err := database.GetUsersSession()
	if err != nil {
		return false
	}

	var email string
	if err := session.Query(`SELECT email FROM users WHERE user_id = ?`, userID).Scan(&email); err != nil || email == "" {
		return false
	}

	totals := cart.ComputeTotals(state)
	itemCount := 0
	for _, item := range state.Items {
		itemCount += item.Quantity
	}

	if err := utils.SendCartReminderEmail(email, itemCount, totals.GrandTotal); err != nil {
		log.Printf("⚠️ Échec envoi rappel panier à %s: %v", email, err)
		return false
	}

	return true
}
