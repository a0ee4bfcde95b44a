package api

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tavern/adapters/sse"
	"tavern/trade"
)

const (
	// ObserverChannel 是遊戲主持人等觀察者共用的廣播頻道
	ObserverChannel = "observers"

	EventOfferReceived    = "trade-offer-received"
	EventTradeResponse    = "trade-response"
	EventOwnershipChanged = "ownership-changed"
)

// Event 是推送給瀏覽器的 SSE 事件
// Payload 經過 msgpack 序列化在實例之間傳遞，送到瀏覽器時轉為 JSON
type Event struct {
	Name    string `json:"name" msgpack:"name"`
	Payload any    `json:"payload" msgpack:"payload"`
}

// PlayerChannel 回傳玩家私人頻道的名稱
func PlayerChannel(playerID uuid.UUID) string {
	return "player:" + playerID.String()
}

// pushNotifier 把協商服務的推送出口接到 SSE 連線管理器
// 推送失敗只記錄日誌：同步回應才是對呼叫者的權威結果，
// 收不到推送的另一方由客戶端的逾時機制兜底
type pushNotifier struct {
	manager sse.IConnectionManager[Event]
	logger  *slog.Logger
}

func newPushNotifier(manager sse.IConnectionManager[Event], logger *slog.Logger) *pushNotifier {
	return &pushNotifier{
		manager: manager,
		logger:  logger.With(slog.String("caller", "PushNotifier")),
	}
}

func (n *pushNotifier) OfferReceived(ctx context.Context, receiverID uuid.UUID, event trade.OfferEvent) {
	n.publish(PlayerChannel(receiverID), Event{Name: EventOfferReceived, Payload: event})
}

func (n *pushNotifier) TradeResponded(ctx context.Context, senderID uuid.UUID, event trade.ResponseEvent) {
	n.publish(PlayerChannel(senderID), Event{Name: EventTradeResponse, Payload: event})
}

func (n *pushNotifier) OwnershipChanged(ctx context.Context, events []trade.OwnershipEvent) {
	for _, event := range events {
		n.publish(ObserverChannel, Event{Name: EventOwnershipChanged, Payload: event})
	}
}

func (n *pushNotifier) publish(channel string, event Event) {
	if err := n.manager.Publish(channel, event); err != nil {
		n.logger.Error("fail to publish event",
			slog.String("channel", channel),
			slog.String("event", event.Name),
			slog.Any("error", err))
	}
}
