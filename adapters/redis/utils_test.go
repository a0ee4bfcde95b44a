package redis

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// 測試用的推送事件結構
type pushEvent struct {
	Channel   string    `json:"channel"`
	Event     string    `json:"event"`
	TradeID   uuid.UUID `json:"tradeId"`
	Accepted  bool      `json:"accepted"`
	CreatedAt time.Time `json:"created_at"`
}

type emptyEvent struct{}

// compareTime 比較兩個時間是否相等，忽略單調時鐘和位置信息
func compareTime(t1, t2 time.Time) bool {
	return t1.UTC().Equal(t2.UTC())
}

func comparePushEvent(t *testing.T, expected, actual pushEvent) {
	assert.Equal(t, expected.Channel, actual.Channel)
	assert.Equal(t, expected.Event, actual.Event)
	assert.Equal(t, expected.TradeID, actual.TradeID)
	assert.Equal(t, expected.Accepted, actual.Accepted)
	assert.True(t, compareTime(expected.CreatedAt, actual.CreatedAt),
		"time mismatch: expected %v, got %v", expected.CreatedAt, actual.CreatedAt)
}

func TestDefaultParseToMessage(t *testing.T) {
	t.Run("normal event", func(t *testing.T) {
		input := pushEvent{
			Channel:   "player:7f3c",
			Event:     "trade-response",
			TradeID:   uuid.New(),
			Accepted:  true,
			CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		result, err := DefaultParseToMessage(input)
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("empty event", func(t *testing.T) {
		result, err := DefaultParseToMessage(emptyEvent{})
		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Contains(t, result, "data")
		assert.NotEmpty(t, result["data"])
	})

	t.Run("pointer type error", func(t *testing.T) {
		input := &pushEvent{Channel: "observers"}

		_, err := DefaultParseToMessage(input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("nil pointer", func(t *testing.T) {
		var input *pushEvent

		_, err := DefaultParseToMessage(input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("zero values round trip", func(t *testing.T) {
		input := pushEvent{} // 全部為零值

		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		result, err := DefaultParseFromMessage[pushEvent](message)
		assert.NoError(t, err)
		comparePushEvent(t, input, result)
	})
}

func TestDefaultParseFromMessage(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		input := pushEvent{
			Channel:   "observers",
			Event:     "trade-offer-received",
			TradeID:   uuid.New(),
			CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}

		// 先轉換為message
		message, err := DefaultParseToMessage(input)
		assert.NoError(t, err)

		// 再轉換回struct
		result, err := DefaultParseFromMessage[pushEvent](message)
		assert.NoError(t, err)
		comparePushEvent(t, input, result)
	})

	t.Run("empty map", func(t *testing.T) {
		result, err := DefaultParseFromMessage[pushEvent](map[string]any{})
		assert.NoError(t, err)
		assert.Empty(t, result.Channel)
		assert.False(t, result.Accepted)
	})

	t.Run("nil map", func(t *testing.T) {
		var input map[string]any

		result, err := DefaultParseFromMessage[pushEvent](input)
		assert.NoError(t, err)
		assert.Empty(t, result.Channel)
	})

	t.Run("pointer type error", func(t *testing.T) {
		input := map[string]any{"data": "some base64 data"}

		_, err := DefaultParseFromMessage[*pushEvent](input)
		assert.ErrorIs(t, err, ErrPointerType)
	})

	t.Run("invalid base64", func(t *testing.T) {
		input := map[string]any{
			"data": "invalid base64",
		}

		_, err := DefaultParseFromMessage[pushEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base64 decode error")
	})

	t.Run("missing data field", func(t *testing.T) {
		input := map[string]any{
			"wrong_field": "some data",
		}

		_, err := DefaultParseFromMessage[pushEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "data field not found")
	})

	t.Run("invalid data type", func(t *testing.T) {
		input := map[string]any{
			"data": 123, // 錯誤的類型
		}

		_, err := DefaultParseFromMessage[pushEvent](input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid type")
	})
}
