package trade

import (
	"fmt"

	"gorm.io/gorm"

	"tavern/models"
)

// swapResult 是一次持有權轉移的結果
// ReceiverReceived 一定存在（接收者拿到發起者提供的物品）；
// SenderReceived 只在雙向交易時存在（發起者換得接收者的物品）
type swapResult struct {
	ReceiverReceived *Object
	SenderReceived   *Object
}

// executeSwap 在呼叫端的交易中執行持有權轉移
// 雙向交易的兩次 re-key 要嘛一起提交、要嘛都不提交，
// 部分成功會造成物品無主或重複，這正是整個流程最不能發生的事。
// 所有能檢查的前置條件都在驗證階段檢查過了，這裡的任何失敗都代表
// 有競態繞過了驗證，由呼叫端 rollback 並收斂成 unknown_error
func executeSwap(tx *gorm.DB, adapter OwnershipAdapter, t *models.Trade) (*swapResult, error) {
	receiverReceived, err := adapter.ReassignOwner(tx, t.SenderID, t.SenderObjectID, t.ReceiverID)
	if err != nil {
		return nil, fmt.Errorf("fail to reassign sender object %s, err=%w", t.SenderObjectID, err)
	}

	// 單方面贈與：只有一次 re-key
	if t.ReceiverObjectID == nil {
		return &swapResult{ReceiverReceived: receiverReceived}, nil
	}

	senderReceived, err := adapter.ReassignOwner(tx, t.ReceiverID, *t.ReceiverObjectID, t.SenderID)
	if err != nil {
		return nil, fmt.Errorf("fail to reassign receiver object %s, err=%w", *t.ReceiverObjectID, err)
	}
	return &swapResult{
		ReceiverReceived: receiverReceived,
		SenderReceived:   senderReceived,
	}, nil
}
