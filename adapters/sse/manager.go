package sse

import (
	"context"
	"log/slog"
	"sync"
)

type managerOptions[T any] struct {
	logger        *slog.Logger
	subscriber    ISubscriber[PublishRequest[T]]
	publisher     IPublisher[PublishRequest[T]]
	channelBuffer int
}

type ManagerOption[T any] func(*managerOptions[T])

// WithLogger 設定日誌記錄器
func WithLogger[T any](logger *slog.Logger) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.logger = logger
	}
}

// WithSubscriber 設定上游事件來源
// 設定之後，Start 會把來源送出的事件轉發到對應的本地頻道，
// 讓多個服務實例可以透過共用的 stream 協同運作
func WithSubscriber[T any](subscriber ISubscriber[PublishRequest[T]]) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.subscriber = subscriber
	}
}

// WithPublisher 設定下游事件出口
// 設定之後，Publish 會把事件交給出口（通常是 stream 生產者），
// 事件會經由所有實例的 subscriber 回流到本地頻道；
// 沒有設定時 Publish 直接廣播到本地頻道
func WithPublisher[T any](publisher IPublisher[PublishRequest[T]]) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.publisher = publisher
	}
}

// WithChannelBuffer 設定每個訂閱者通道的緩衝大小
func WithChannelBuffer[T any](size int) ManagerOption[T] {
	return func(o *managerOptions[T]) {
		o.channelBuffer = size
	}
}

// connectionManager 管理多個推送頻道的訂閱與發布
type connectionManager[T any] struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.RWMutex   // 保護 active 和 channels 的讀寫
	wg     sync.WaitGroup // 用於等待所有 goroutine 完成
	active bool           // 標記 manager 是否正在運作中

	channels map[string]IChannel[T] // 儲存所有活躍的頻道
	options  managerOptions[T]
}

// NewConnectionManager 建立一個新的連線管理器
func NewConnectionManager[T any](opts ...ManagerOption[T]) (IConnectionManager[T], error) {
	// 默認選項
	options := managerOptions[T]{
		logger:        slog.Default(),
		channelBuffer: 16,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &connectionManager[T]{
		ctx:      ctx,
		cancel:   cancel,
		logger:   options.logger.With(slog.String("caller", "ConnectionManager")),
		channels: make(map[string]IChannel[T]),
		options:  options,
		active:   true,
	}, nil
}

// Start 啟動連線管理器，開始處理事件的接收與廣播。
// 應在呼叫其他方法前先呼叫此方法。
func (cm *connectionManager[T]) Start() {
	if cm.options.subscriber == nil {
		return
	}

	// 啟動事件轉發的 goroutine
	cm.wg.Add(1)
	go func() {
		defer cm.wg.Done()
		ch := cm.options.subscriber.Subscribe()
		for {
			select {
			case <-cm.ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				cm.broadcast(msg.Channel, msg.Message)
			}
		}
	}()
}

// Done 停止連線管理器的運作
func (cm *connectionManager[T]) Done() {
	cm.mu.Lock()
	if !cm.active {
		cm.mu.Unlock()
		return
	}
	cm.active = false
	cm.mu.Unlock()

	cm.cancel()
	cm.wg.Wait()

	cm.mu.Lock()
	defer cm.mu.Unlock()
	for _, channel := range cm.channels {
		channel.UnsubscribeAll()
	}
	clear(cm.channels)
}

// Subscribe 訂閱指定的頻道，返回用於接收事件的唯讀通道
func (cm *connectionManager[T]) Subscribe(channelName string) (<-chan T, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if !cm.active {
		return nil, context.Canceled
	}

	c, ok := cm.channels[channelName]
	if !ok {
		c = NewChannel[T](cm.options.channelBuffer)
		cm.channels[channelName] = c
	}
	return c.Subscribe(), nil
}

// Publish 發布事件到指定的頻道
func (cm *connectionManager[T]) Publish(channelName string, data T) error {
	cm.mu.RLock()
	active := cm.active
	cm.mu.RUnlock()
	if !active {
		return context.Canceled
	}

	// 有設定出口就交給出口，事件會經由 subscriber 回流；
	// 否則直接廣播到本地頻道
	if cm.options.publisher != nil {
		return cm.options.publisher.Publish(PublishRequest[T]{
			Channel: channelName,
			Message: data,
		})
	}
	cm.broadcast(channelName, data)
	return nil
}

// Unsubscribe 取消訂閱指定的頻道
func (cm *connectionManager[T]) Unsubscribe(channelName string, ch <-chan T) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, ok := cm.channels[channelName]
	if !ok {
		return
	}

	c.Unsubscribe(ch)
	if c.IsIdle() {
		delete(cm.channels, channelName)
	}
}

func (cm *connectionManager[T]) broadcast(channelName string, data T) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if channel, ok := cm.channels[channelName]; ok {
		channel.Broadcast(data)
	}
}
