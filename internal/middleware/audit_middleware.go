package middleware

import (
	"context"
	"log"
	"time"

	"atelier_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// AuditEvent décrit une action d'administration réussie.
type AuditEvent struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	Method   string    `json:"method"`
	Route    string    `json:"route"`
	Resource string    `json:"resource,omitempty"`
	Status   int       `json:"status"`
	At       time.Time `json:"at"`
}

// Audit publie un événement sur services.TopicAdminAudit après chaque
// requête d'administration terminée en 2xx.
func Audit(events services.EventPublisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		ev := AuditEvent{
			UserID:   c.GetString(CtxUserID),
			Email:    c.GetString(CtxEmail),
			Method:   c.Request.Method,
			Route:    c.FullPath(),
			Resource: c.Param("id"),
			Status:   status,
			At:       time.Now().UTC(),
		}

		// La réponse est déjà partie : le contexte de la requête peut être annulé.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := events.PublishEvent(ctx, services.TopicAdminAudit, ev.UserID, ev); err != nil {
				log.Printf("❌ Erreur enregistrement log audit: %v", err)
			}
		}()
	}
}
