package trade

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tavern/models"
)

// Engine 是交易協商服務
// 三個物品類別共用同一套控制流程，各自以一個 OwnershipAdapter 實例化；
// 每個進入點都是獨立、短命的請求處理，彼此之間只透過儲存層協調
// （存在性檢查和 unique constraint），不使用任何行程內鎖
type Engine struct {
	db       *gorm.DB
	adapter  OwnershipAdapter
	notifier Notifier
	logger   *slog.Logger
}

type EngineOption func(*Engine)

// WithNotifier 設定推送出口
func WithNotifier(n Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithLogger 設定日誌記錄器
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine 建立一個類別的交易協商服務
func NewEngine(db *gorm.DB, adapter OwnershipAdapter, opts ...EngineOption) *Engine {
	e := &Engine{
		db:       db,
		adapter:  adapter,
		notifier: NopNotifier{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(
		slog.String("caller", "TradeEngine"),
		slog.String("class", string(adapter.Class())),
	)
	return e
}

// Resolution 是一筆交易被解決（接受或拒絕）後的結果
type Resolution struct {
	Trade    *models.Trade
	Accepted bool
	// ReceiverReceived 是呼叫者（接收者）拿到的物品，只在接受時存在
	ReceiverReceived *Object
	// SenderReceived 是發起者換得的物品，只在接受雙向交易時存在
	SenderReceived *Object
}

// Offer 建立一筆交易提案
// 驗證順序必須嚴格保持，每一步的失敗原因原封不動回傳：
//  1. 接收者已參與任何交易 -> trade_already_exists
//  2. 有要求物品時：與提供物品相同 -> trading_same_item；
//     呼叫者已持有要求物品 -> receiver_object_already_exists；
//     接收者未持有要求物品 -> receiver_does_not_have_object
//  3. 沒有要求物品時：接收者已持有提供物品 -> receiver_already_has_object
//  4. 呼叫者未持有提供物品 -> sender_does_not_have_object
//  5. 寫入交易資料列，並推送 trade-offer-received 給接收者
func (e *Engine) Offer(ctx context.Context, callerID, receiverID, senderObjectID uuid.UUID, receiverObjectID *uuid.UUID) (*models.Trade, error) {
	const op = "Engine.Offer"
	db := e.db.WithContext(ctx)

	engaged, err := playerEngaged(db, receiverID)
	if err != nil {
		return nil, e.fail(op, err)
	}
	if engaged {
		return nil, ErrTradeAlreadyExists
	}

	if receiverObjectID != nil {
		if *receiverObjectID == senderObjectID {
			return nil, ErrTradingSameItem
		}
		callerOwns, err := e.adapter.Owns(db, callerID, *receiverObjectID)
		if err != nil {
			return nil, e.fail(op, err)
		}
		if callerOwns {
			return nil, ErrReceiverObjectAlreadyExists
		}
		receiverOwns, err := e.adapter.Owns(db, receiverID, *receiverObjectID)
		if err != nil {
			return nil, e.fail(op, err)
		}
		if !receiverOwns {
			return nil, ErrReceiverDoesNotHaveObject
		}
	} else {
		receiverOwns, err := e.adapter.Owns(db, receiverID, senderObjectID)
		if err != nil {
			return nil, e.fail(op, err)
		}
		if receiverOwns {
			return nil, ErrReceiverAlreadyHasObject
		}
	}

	senderOwns, err := e.adapter.Owns(db, callerID, senderObjectID)
	if err != nil {
		return nil, e.fail(op, err)
	}
	if !senderOwns {
		return nil, ErrSenderDoesNotHaveObject
	}

	// 提出交易當下快照顯示名稱，之後改名不影響接收者看到的內容
	sender := models.Player{ID: callerID}
	if result := db.First(&sender); result.Error != nil {
		return nil, e.fail(op, result.Error)
	}
	objectName, err := e.adapter.ObjectName(db, senderObjectID)
	if err != nil {
		return nil, e.fail(op, err)
	}

	t := &models.Trade{
		Class:            string(e.adapter.Class()),
		SenderID:         callerID,
		ReceiverID:       receiverID,
		SenderObjectID:   senderObjectID,
		ReceiverObjectID: receiverObjectID,
		SenderName:       sender.Name,
		SenderObjectName: objectName,
	}
	if err := createTrade(db, t); err != nil {
		return nil, e.fail(op, err)
	}

	e.logger.Info("trade offered",
		slog.String("tradeId", t.ID.String()),
		slog.String("sender", callerID.String()),
		slog.String("receiver", receiverID.String()))
	e.notifier.OfferReceived(ctx, receiverID, OfferEvent{
		Class:             e.adapter.Class(),
		TradeID:           t.ID,
		RequestedObjectID: receiverObjectID,
		SenderName:        t.SenderName,
		OfferedObjectName: t.SenderObjectName,
	})
	return t, nil
}

// Respond 以接收者身份接受或拒絕交易
// 同一個交易先宣告資料列所有權（刪除並檢查影響列數），讓重複的並發呼叫
// 或搶先的 abandon 失敗在同一個檢查點；接受時 swap 和刪除一起提交。
// swap 的任何失敗都收斂成 unknown_error：能檢查的都在 Offer 階段檢查過了
func (e *Engine) Respond(ctx context.Context, callerID, tradeID uuid.UUID, accept bool) (*Resolution, error) {
	const op = "Engine.Respond"
	var resolution *Resolution

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := findTradeForReceiver(tx, tradeID, callerID)
		if err != nil {
			return err
		}
		if t.Class != string(e.adapter.Class()) {
			return ErrTradeDoesNotExist
		}
		claimed, err := claimTrade(tx, tradeID)
		if err != nil {
			return err
		}
		if !claimed {
			return ErrTradeDoesNotExist
		}

		resolution = &Resolution{Trade: t, Accepted: accept}
		if !accept {
			return nil
		}
		swapped, err := executeSwap(tx, e.adapter, t)
		if err != nil {
			return err
		}
		resolution.ReceiverReceived = swapped.ReceiverReceived
		resolution.SenderReceived = swapped.SenderReceived
		return nil
	})
	if err != nil {
		return nil, e.fail(op, err)
	}

	t := resolution.Trade
	e.logger.Info("trade resolved",
		slog.String("tradeId", t.ID.String()),
		slog.Bool("accepted", accept))
	e.notifier.TradeResponded(ctx, t.SenderID, ResponseEvent{
		Class:         e.adapter.Class(),
		Trade:         t,
		Accepted:      accept,
		SwappedObject: resolution.SenderReceived,
	})
	if accept {
		e.notifier.OwnershipChanged(ctx, e.ownershipEvents(resolution))
	}
	return resolution, nil
}

// Abandon 取消交易，由客戶端倒數逾時觸發
// 與接收者的 Respond 競爭時，誰的刪除先提交誰贏；輸的一方影響零列，
// 而且無論資料列是否還存在都回報成功
func (e *Engine) Abandon(ctx context.Context, callerID, tradeID uuid.UUID) error {
	const op = "Engine.Abandon"
	if err := cancelTrade(e.db.WithContext(ctx), tradeID, callerID); err != nil {
		// 逾時取消對呼叫端永遠是成功的，儲存層問題只記錄在伺服器端
		e.logger.Error("fail to cancel trade",
			slog.String("op", op),
			slog.String("tradeId", tradeID.String()),
			slog.Any("error", err))
	}
	return nil
}

// ownershipEvents 產生廣播到觀察者頻道的 remove/add 事件對
func (e *Engine) ownershipEvents(resolution *Resolution) []OwnershipEvent {
	t := resolution.Trade
	class := e.adapter.Class()
	events := []OwnershipEvent{
		{Class: class, Action: "remove", ObjectID: t.SenderObjectID, OwnerID: t.SenderID},
		{Class: class, Action: "add", ObjectID: t.SenderObjectID, OwnerID: t.ReceiverID},
	}
	if t.ReceiverObjectID != nil {
		events = append(events,
			OwnershipEvent{Class: class, Action: "remove", ObjectID: *t.ReceiverObjectID, OwnerID: t.ReceiverID},
			OwnershipEvent{Class: class, Action: "add", ObjectID: *t.ReceiverObjectID, OwnerID: t.SenderID},
		)
	}
	return events
}

// fail 把非型別化的錯誤收斂成 unknown_error，詳細原因記錄在伺服器端
func (e *Engine) fail(op string, err error) error {
	if tradeErr, ok := AsError(err); ok {
		return tradeErr
	}
	e.logger.Error("trade operation failed",
		slog.String("op", op),
		slog.Any("error", err))
	return ErrUnknown
}
