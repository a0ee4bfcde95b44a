package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Trade 代表一筆進行中的交易協商
// 一筆交易由發起者(sender)提供一個物品，並可選擇性地要求接收者(receiver)
// 以另一個物品交換；若沒有要求物品則視為單方面的贈與
//
// NOTE: sender_id 和 receiver_id 各自帶有 partial unique index，
// 確保「每位玩家同時最多只能參與一筆交易」這個約束是由資料庫原子性地保證，
// 而不是依賴先查詢再寫入的檢查（那會有 check-then-act 的競態）
type Trade struct {
	gorm.Model

	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;<-:create"`
	Class            string     `gorm:"type:varchar(16);not null;<-:create"`
	SenderID         uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_trade_sender_id,where:deleted_at IS NULL;not null;<-:create"`
	ReceiverID       uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_trade_receiver_id,where:deleted_at IS NULL;not null;<-:create"`
	SenderObjectID   uuid.UUID  `gorm:"type:uuid;not null;<-:create"`
	ReceiverObjectID *uuid.UUID `gorm:"type:uuid;<-:create"`

	// 提出交易當下的顯示名稱快照，之後改名不會回頭更新接收者看到的內容
	SenderName       string `gorm:"type:varchar(255);not null;<-:create"`
	SenderObjectName string `gorm:"type:varchar(255);not null;<-:create"`

	// 外鍵關聯
	Sender   *Player `gorm:"foreignKey:SenderID"`
	Receiver *Player `gorm:"foreignKey:ReceiverID"`
}

func (t *Trade) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
