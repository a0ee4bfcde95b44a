package sse_test

import (
	"io"
	"log"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
}

// Event 表示一個推送事件，包含資料字段
type Event struct {
	Data string `json:"data"`
}
