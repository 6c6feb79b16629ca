package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"storefront_back_end/internal/checkout"
	"storefront_back_end/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket gère la synchronisation temps réel du panier
func CartWebSocket(c *gin.Context) {
	sessionID := c.GetString("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session panier manquante"})
		return
	}

	// Upgrade vers WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	// S'abonner au canal Redis pour cette session
	pubsub := database.Redis.Subscribe(ctx, "cart:"+sessionID)
	defer pubsub.Close()

	ch := pubsub.Channel()

	// Envoyer un message de connexion
	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	// Boucle d'écoute
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			snapshot, err := cartSnapshot(ctx, sessionID)
			if err != nil {
				log.Printf("⚠️ Lecture panier pour websocket: %v", err)
				continue
			}

			if err := conn.WriteJSON(snapshot); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func cartSnapshot(ctx context.Context, sessionID string) (map[string]interface{}, error) {
	resolveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	items, err := database.Checkout.ResolveCart(resolveCtx, sessionID)
	if err != nil {
		return nil, err
	}

	subtotal := checkout.Subtotal(items)

	count := 0
	for _, item := range items {
		count += item.Quantity
	}

	return map[string]interface{}{
		"type":     "cart_updated",
		"items":    items,
		"subtotal": subtotal,
		"shipping": checkout.ShippingFee(subtotal),
		"total":    checkout.Total(subtotal),
		"count":    count,
	}, nil
}
