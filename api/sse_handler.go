package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/katatrina/eduhub-BE/internal/event"
	"github.com/rs/zerolog/log"
)

// streamNotificationEvents establishes the caller's real-time notification
// stream. The connection binds a session id in the registry so the dispatch
// engine can tell online recipients apart from offline ones, and unbinds it
// on disconnect.
func (server *Server) streamNotificationEvents(c *gin.Context) {
	userID := authenticatedUserID(c)
	sessionID := uuid.NewString()

	if err := server.sessions.Bind(c, userID, sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse(err))
		return
	}
	defer func() {
		if err := server.sessions.Unbind(c.Request.Context(), userID); err != nil {
			log.Warn().Err(err).Str("userID", userID).Msg("failed to unbind session")
		}
	}()

	topic := event.UserTopic(userID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)

	clientChan := make(chan event.Event, 8)
	server.eventSender.Register(topic, clientChan)
	defer server.eventSender.Unregister(topic, clientChan)

	for {
		select {
		case ev := <-clientChan:
			data, _ := json.Marshal(ev.Data)
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", ev.Type, data)
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}
