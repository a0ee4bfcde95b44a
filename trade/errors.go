package trade

import "errors"

// Code 是交易協商流程對外回報的結構化失敗原因
// 這些字串會原封不動地回傳給呼叫端，由前端做在地化顯示
type Code string

const (
	// 前置條件失敗：這類失敗是終態，呼叫端必須改變請求內容，不會自動重試
	CodeTradeAlreadyExists          Code = "trade_already_exists"
	CodeTradingSameItem             Code = "trading_same_item"
	CodeReceiverObjectAlreadyExists Code = "receiver_object_already_exists"
	CodeReceiverDoesNotHaveObject   Code = "receiver_does_not_have_object"
	CodeReceiverAlreadyHasObject    Code = "receiver_already_has_object"
	CodeSenderDoesNotHaveObject     Code = "sender_does_not_have_object"

	// 競態失敗：交易已被解決、不存在、或呼叫者不是接收者，一律用同一個原因回報
	CodeTradeDoesNotExist Code = "trade_does_not_exist"

	// 儲存層失敗：所有能事先檢查的條件都已在驗證階段檢查過，
	// 走到這裡代表有競態繞過了驗證；詳細原因記錄在伺服器端日誌
	CodeUnknown Code = "unknown_error"
)

// Error 是交易流程的型別化失敗結果，不會穿透 handler 邊界往外丟
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return string(e.Code)
}

var (
	ErrTradeAlreadyExists          = &Error{Code: CodeTradeAlreadyExists}
	ErrTradingSameItem             = &Error{Code: CodeTradingSameItem}
	ErrReceiverObjectAlreadyExists = &Error{Code: CodeReceiverObjectAlreadyExists}
	ErrReceiverDoesNotHaveObject   = &Error{Code: CodeReceiverDoesNotHaveObject}
	ErrReceiverAlreadyHasObject    = &Error{Code: CodeReceiverAlreadyHasObject}
	ErrSenderDoesNotHaveObject     = &Error{Code: CodeSenderDoesNotHaveObject}
	ErrTradeDoesNotExist           = &Error{Code: CodeTradeDoesNotExist}
	ErrUnknown                     = &Error{Code: CodeUnknown}
)

// AsError 取出型別化的交易失敗結果
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
