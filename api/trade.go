package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tavern/trade"
)

// classEngine 解析路徑參數中的物品類別並取得對應的協商服務
func (impl *ServerImpl) classEngine(c *gin.Context) (*trade.Engine, bool) {
	class, ok := trade.ParseClass(c.Param("class"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "unknown item class"})
		return nil, false
	}
	return impl.engines[class], true
}

// tradeFailure 把協商流程的結構化失敗原因轉為HTTP回應
// 錯誤代碼原封不動回傳，由前端做在地化顯示
func tradeFailure(c *gin.Context, err error) {
	tradeErr, ok := trade.AsError(err)
	if !ok {
		tradeErr = trade.ErrUnknown
	}
	status := http.StatusConflict
	switch tradeErr.Code {
	case trade.CodeTradeDoesNotExist:
		status = http.StatusNotFound
	case trade.CodeUnknown:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": tradeErr.Code})
}

// Propose a trade
// (PUT /trade/{class})
func (impl *ServerImpl) PutTrade(c *gin.Context) {
	engine, ok := impl.classEngine(c)
	if !ok {
		return
	}
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	var request struct {
		OfferID uuid.UUID  `json:"offerId" binding:"required"`
		To      uuid.UUID  `json:"to" binding:"required"`
		For     *uuid.UUID `json:"for"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	t, err := engine.Offer(c.Request.Context(), playerID, request.To, request.OfferID, request.For)
	if err != nil {
		tradeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": t})
}

// Respond to a trade
// (POST /trade/{class})
func (impl *ServerImpl) PostTrade(c *gin.Context) {
	engine, ok := impl.classEngine(c)
	if !ok {
		return
	}
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	var request struct {
		TradeID uuid.UUID `json:"tradeId" binding:"required"`
		Accept  *bool     `json:"accept" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	resolution, err := engine.Respond(c.Request.Context(), playerID, request.TradeID, *request.Accept)
	if err != nil {
		tradeFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trade":  resolution.Trade,
		"object": resolution.ReceiverReceived,
	})
}

// Abandon a trade after the client-side countdown expires
// (DELETE /trade/{class})
func (impl *ServerImpl) DeleteTrade(c *gin.Context) {
	engine, ok := impl.classEngine(c)
	if !ok {
		return
	}
	playerID, _, ok := impl.currentPlayer(c)
	if !ok {
		return
	}
	var request struct {
		TradeID uuid.UUID `json:"tradeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	// 逾時取消對呼叫端永遠是成功的
	_ = engine.Abandon(c.Request.Context(), playerID, request.TradeID)
	c.JSON(http.StatusOK, gin.H{})
}
