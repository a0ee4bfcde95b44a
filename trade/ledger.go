package trade

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tavern/models"
)

// 交易帳本：「現在有沒有一筆協商在進行、在誰之間、交易什麼」的唯一真相來源。
// 帳本只有三種狀態轉移：NONE -> OFFERED（建立）-> 終態（刪除），
// 不在原地重新出價，新的出價永遠是新的資料列。

// playerEngaged 檢查玩家是否已是任何一筆進行中交易的一方（發起者或接收者）
func playerEngaged(tx *gorm.DB, playerID uuid.UUID) (bool, error) {
	var count int64
	result := tx.Model(&models.Trade{}).
		Where("sender_id = ? OR receiver_id = ?", playerID, playerID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("fail to check pending trades, err=%w", result.Error)
	}
	return count > 0, nil
}

// createTrade 寫入交易資料列
// playerEngaged 的檢查和這裡的寫入不是同一個原子操作，
// 兩個發起者可能同時通過檢查；sender_id/receiver_id 上的 unique index
// 會讓晚到的寫入原子性地失敗，這裡把 duplicate key 轉成 trade_already_exists
func createTrade(tx *gorm.DB, t *models.Trade) error {
	if result := tx.Create(t); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrTradeAlreadyExists
		}
		return fmt.Errorf("fail to create trade, err=%w", result.Error)
	}
	return nil
}

// findTradeForReceiver 以接收者身份取得交易
// 「已解決」、「從未存在」、「不是你的交易」一律回傳 trade_does_not_exist
func findTradeForReceiver(tx *gorm.DB, tradeID, receiverID uuid.UUID) (*models.Trade, error) {
	var t models.Trade
	result := tx.Where("id = ? AND receiver_id = ?", tradeID, receiverID).First(&t)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTradeDoesNotExist
		}
		return nil, fmt.Errorf("fail to find trade, err=%w", result.Error)
	}
	return &t, nil
}

// claimTrade 刪除交易資料列並回報是不是這次呼叫刪掉的
// 解決交易時一律先刪除，讓重複的並發呼叫（第二個 respond、或趕上的 abandon）
// 影響零列而失敗在同一個檢查點上
func claimTrade(tx *gorm.DB, tradeID uuid.UUID) (bool, error) {
	result := tx.Where("id = ?", tradeID).Delete(&models.Trade{})
	if result.Error != nil {
		return false, fmt.Errorf("fail to delete trade, err=%w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// cancelTrade 取消交易，冪等：資料列已不存在不是錯誤
// 只允許交易的其中一方取消；無論刪到幾列都回報成功
func cancelTrade(tx *gorm.DB, tradeID, callerID uuid.UUID) error {
	result := tx.Where("id = ? AND (sender_id = ? OR receiver_id = ?)", tradeID, callerID, callerID).
		Delete(&models.Trade{})
	if result.Error != nil {
		return fmt.Errorf("fail to cancel trade, err=%w", result.Error)
	}
	return nil
}
