package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tavern/adapters/redis"
	"tavern/adapters/session"
)

const (
	SESSION_KEY_PLAYER_ID   = "player_id"
	SESSION_KEY_PLAYER_NAME = "player_name"
)

func (impl *ServerImpl) SessionMiddleware() gin.HandlerFunc {
	store := redis.NewStore(
		impl.redisClient,
		redis.WithStorePrefix(impl.config.Redis.KeyPrefix+"session:"),
	)
	return session.GinMiddleware(
		store,
		session.WithSessionKeyForCookie(impl.config.Session.KeyForCookie),
		session.WithCookieMaxAge(impl.config.Session.CookieMaxAge),
	)
}

// currentPlayer 從 session 取得目前玩家的身份
// 任何需要身份的操作都必須先通過這個檢查，才能碰到後面的業務邏輯
func (impl *ServerImpl) currentPlayer(c *gin.Context) (uuid.UUID, session.ISession, bool) {
	s, err := session.GetSession(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, nil, false
	}
	playerID, err := uuid.Parse(s.Get(SESSION_KEY_PLAYER_ID))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, nil, false
	}
	return playerID, s, true
}
