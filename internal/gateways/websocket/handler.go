package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// @Summary Live updates
// @Description Streams board_updated and menu_updated events for the token's user
// @Tags WebSocket
// @Param token query string true "Bearer token"
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /api/ws [get]
func (h *Hub) ServeWS(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		h.logger.Warnw("WebSocket connection rejected: token missing",
			"client_ip", c.ClientIP(),
			"user_agent", c.GetHeader("User-Agent"),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
		return
	}

	userID, err := h.verifier.UserID(token)
	if err != nil {
		h.logger.Warnw("WebSocket connection rejected: invalid token",
			"client_ip", c.ClientIP(),
			"error", err,
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorw("Failed to upgrade connection",
			"user_id", userID,
			"error", err,
		)
		return
	}

	client := newClient(h, conn, userID)

	h.logger.Infow("WebSocket connection established",
		"client_id", client.ID,
		"user_id", client.UserID,
		"client_ip", c.ClientIP(),
		"user_agent", c.GetHeader("User-Agent"),
	)

	if !h.join(client) {
		_ = conn.Close()
		return
	}
	go client.writePump()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.leave(client)
}
