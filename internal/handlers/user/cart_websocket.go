package user

import (
	"context"
	"log"
	"net/http"

	"velours_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse l'état du panier à chaque mutation, via le canal
// Redis notifié par la persistance du Store.
func (h *CartHandler) CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, "cart:"+userID)
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	store, err := h.Carts.Store(ctx, userID)
	if err != nil {
		log.Printf("❌ Panier inaccessible pour le websocket: %v", err)
		return
	}

	for msg := range ch {
		if msg.Payload != "updated" {
			continue
		}

		response := cartResponse(store)
		response["type"] = "cart_updated"

		if err := conn.WriteJSON(response); err != nil {
			log.Printf("🔌 Client websocket déconnecté: %v", err)
			return
		}
	}
}
