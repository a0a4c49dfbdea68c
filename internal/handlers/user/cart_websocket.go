package user

import (
	"log"
	"net/http"
	"time"

	"atelier_back_end/internal/cart"
	"atelier_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const pingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	// Les origines sont déjà filtrées par le middleware CORS.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /api/cart/ws
// Pousse le panier recalculé à chaque modification, quel que soit
// l'appareil qui l'a faite.
func (h *CartHandler) Watch(c *gin.Context) {
	me, ok := handlers.User(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	events, stop, err := h.carts.Watch(ctx, me.ID)
	if err != nil {
		handlers.Internal(c, "Erreur abonnement panier", err)
		return
	}
	defer stop()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	// Le client ne parle pas : la lecture sert à détecter la fermeture.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			items, err := h.carts.Load(ctx, me.ID)
			if err != nil {
				log.Printf("⚠️ Lecture panier %s pour WebSocket: %v", me.ID, err)
				continue
			}
			if err := conn.WriteJSON(gin.H{
				"type": "cart_" + event,
				"cart": cart.Summarize(items),
			}); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
