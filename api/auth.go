package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tavern/adapters/session"
	"tavern/models"
)

// Join the table as a named player
// (POST /auth/join)
func (impl *ServerImpl) PostAuthJoin(c *gin.Context) {
	const op = "PostAuthJoin"
	var request struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	name := strings.TrimSpace(impl.htmlChecker.Sanitize(request.Name))
	if len(name) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid player name"})
		return
	}

	s, err := session.GetSession(c)
	if err != nil {
		slog.Error("Fail to load session", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}

	// 同名的玩家視為同一個人回到牌桌
	player := models.Player{Name: name}
	if result := impl.db.Where(&models.Player{Name: name}).FirstOrCreate(&player); result.Error != nil {
		slog.Error("Fail to find or create player", slog.String("op", op), slog.Any("error", result.Error))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}

	s.Set(SESSION_KEY_PLAYER_ID, player.ID.String())
	s.Set(SESSION_KEY_PLAYER_NAME, player.Name)
	if err := s.Save(); err != nil {
		slog.Error("Fail to save session", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"playerId": player.ID,
		"name":     player.Name,
	})
}

// Leave the table
// (GET /auth/logout)
func (impl *ServerImpl) GetAuthLogout(c *gin.Context) {
	const op = "GetAuthLogout"
	s, err := session.GetSession(c)
	if err != nil {
		slog.Error("Fail to load session", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}
	s.Clear()
	if err := s.Save(); err != nil {
		slog.Error("Fail to save session", slog.String("op", op), slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
