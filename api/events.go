package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Track events on the caller's private channel
// (GET /events)
func (impl *ServerImpl) GetEvents(c *gin.Context) {
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	impl.streamEvents(c, PlayerChannel(playerID))
}

// Track ownership changes on the shared observer room
// (GET /events/observers)
func (impl *ServerImpl) GetObserverEvents(c *gin.Context) {
	if _, _, ok := impl.currentPlayer(c); !ok {
		return
	}
	impl.streamEvents(c, ObserverChannel)
}

func (impl *ServerImpl) streamEvents(c *gin.Context, channel string) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Transfer-Encoding", "chunked")
	ch, err := impl.sseManager.Subscribe(channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}
	for {
		select {
		case <-w.CloseNotify():
			impl.sseManager.Unsubscribe(channel, ch)
			return
		case event := <-ch:
			c.SSEvent(event.Name, event.Payload)
			w.Flush()
		// 30秒沒有事件就發送一個空行，確保瀏覽器和中間的代理不會斷開連線
		case <-time.After(30 * time.Second):
			w.WriteString("\n\n")
			w.Flush()
		}
	}
}
