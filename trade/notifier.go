package trade

import (
	"context"

	"github.com/google/uuid"

	"tavern/models"
)

// OfferEvent 是推送給接收者私人頻道的 trade-offer-received 事件內容
// 名稱欄位是提出交易當下的快照，不隨後續改名變動
type OfferEvent struct {
	Class             Class      `json:"class"`
	TradeID           uuid.UUID  `json:"tradeId"`
	RequestedObjectID *uuid.UUID `json:"requestedObjectId"`
	SenderName        string     `json:"senderName"`
	OfferedObjectName string     `json:"offeredObjectName"`
}

// ResponseEvent 是推送給發起者私人頻道的 trade-response 事件內容
// SwappedObject 只在雙向交易被接受時存在，內容是發起者換得的物品快照
type ResponseEvent struct {
	Class         Class         `json:"class"`
	Trade         *models.Trade `json:"trade"`
	Accepted      bool          `json:"accepted"`
	SwappedObject *Object       `json:"swappedObject,omitempty"`
}

// OwnershipEvent 是廣播到觀察者共用頻道的持有權變動事件
// 每件轉移的物品都會產生一組 remove/add 事件對
type OwnershipEvent struct {
	Class    Class     `json:"class"`
	Action   string    `json:"action"` // "add" 或 "remove"
	ObjectID uuid.UUID `json:"objectId"`
	OwnerID  uuid.UUID `json:"ownerId"`
}

// Notifier 是協商服務的推送出口
// 推送只發生在操作成功之後；同步回應永遠是對呼叫者本人的權威結果，
// 推送頻道服務的是交易的另一方和觀察者，不是呼叫者自己
type Notifier interface {
	OfferReceived(ctx context.Context, receiverID uuid.UUID, event OfferEvent)
	TradeResponded(ctx context.Context, senderID uuid.UUID, event ResponseEvent)
	OwnershipChanged(ctx context.Context, events []OwnershipEvent)
}

// NopNotifier 是不做任何事的 Notifier，用於測試和尚未接上推送層的場景
type NopNotifier struct{}

func (NopNotifier) OfferReceived(context.Context, uuid.UUID, OfferEvent)     {}
func (NopNotifier) TradeResponded(context.Context, uuid.UUID, ResponseEvent) {}
func (NopNotifier) OwnershipChanged(context.Context, []OwnershipEvent)       {}
