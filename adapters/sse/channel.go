package sse

import (
	"sync"
)

// Channel 管理針對某個頻道名稱的所有訂閱者，
// 並將接收到的事件廣播給所有訂閱者。
// 訂閱者通道是有緩衝的，廣播時寫不進去就丟棄該訂閱者的這一則事件：
// 推送保證是 at-most-once，慢速連線不能拖住其他訂閱者
type Channel[T any] struct {
	subscribers map[<-chan T]chan<- T
	buffer      int
	mu          sync.RWMutex
}

// NewChannel 建立一個新的推送頻道，buffer 是每個訂閱者的緩衝大小
func NewChannel[T any](buffer int) IChannel[T] {
	if buffer < 1 {
		buffer = 1
	}
	return &Channel[T]{
		subscribers: make(map[<-chan T]chan<- T),
		buffer:      buffer,
	}
}

// Subscribe 建立一個新的訂閱通道，將其加入 subscribers，並回傳唯讀通道給呼叫者
func (c *Channel[T]) Subscribe() <-chan T {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan T, c.buffer)
	c.subscribers[ch] = ch
	return ch
}

// Unsubscribe 從 subscribers 中移除指定的通道，並關閉該通道
func (c *Channel[T]) Unsubscribe(ch <-chan T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if writeCh, exists := c.subscribers[ch]; exists {
		delete(c.subscribers, ch)
		close(writeCh)
	}
}

// UnsubscribeAll 關閉所有訂閱者的通道並清空訂閱清單
func (c *Channel[T]) UnsubscribeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, writeCh := range c.subscribers {
		close(writeCh)
	}
	clear(c.subscribers)
}

// Broadcast 將事件廣播給所有仍在訂閱清單中的通道
// 單一訂閱者收到的事件順序和發布順序一致；緩衝滿了就丟棄那一則
func (c *Channel[T]) Broadcast(message T) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, writeCh := range c.subscribers {
		select {
		case writeCh <- message:
		default:
		}
	}
}

// IsIdle 判斷 subscribers 是否為空
func (c *Channel[T]) IsIdle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers) == 0
}
