package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"football-analytics/config"
	"football-analytics/database"
	"football-analytics/logger"
)

// EventBroadcaster 接口用于广播事件，避免与 web 层循环依赖
type EventBroadcaster interface {
	Broadcast(eventType string, data interface{})
}

// MatchFeed 从 AMQP 队列消费外部采集器发布的比赛记录
// 写入存储后广播 data_updated 事件并使统计缓存失效
type MatchFeed struct {
	config      *config.Config
	store       *MatchStore
	broadcaster EventBroadcaster
	cache       *StatsCache

	// mu 保护连接字段与 stopped 标志，重连协程与 Stop 并发访问
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	stopped bool

	done chan struct{}
}

func NewMatchFeed(cfg *config.Config, store *MatchStore, broadcaster EventBroadcaster, cache *StatsCache) *MatchFeed {
	return &MatchFeed{
		config:      cfg,
		store:       store,
		broadcaster: broadcaster,
		cache:       cache,
		done:        make(chan struct{}),
	}
}

// Start 连接队列并开始消费，连接断开后按指数退避自动重连
func (f *MatchFeed) Start() error {
	msgs, err := f.connectAndConsume()
	if err != nil {
		return fmt.Errorf("initial connection failed: %w", err)
	}

	go f.handleDeliveries(msgs)
	go f.monitorConnection()

	return nil
}

// Stop 停止消费并关闭连接
func (f *MatchFeed) Stop() {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		return
	}
	f.stopped = true
	conn, channel := f.conn, f.channel
	f.mu.Unlock()

	close(f.done)

	if channel != nil {
		channel.Close()
	}
	if conn != nil {
		conn.Close()
	}
}

func (f *MatchFeed) connectAndConsume() (<-chan amqp.Delivery, error) {
	conn, err := amqp.Dial(f.config.FeedAMQPURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	if err := channel.Qos(100, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	queue, err := channel.QueueDeclare(
		f.config.FeedQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	for _, routingKey := range f.config.FeedRoutingKeys {
		if err := channel.QueueBind(queue.Name, routingKey, "amq.topic", false, nil); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to bind queue: %w", err)
		}
		logger.Printf("[MatchFeed] Bound to routing key: %s", routingKey)
	}

	msgs, err := channel.Consume(
		queue.Name,
		"",    // consumer
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to consume: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.channel = channel
	f.mu.Unlock()

	logger.Printf("[MatchFeed] Consuming from queue: %s", queue.Name)
	return msgs, nil
}

// monitorConnection 监控连接状态，断开后指数退避重连
func (f *MatchFeed) monitorConnection() {
	f.mu.Lock()
	conn := f.conn
	f.mu.Unlock()

	closeCh := conn.NotifyClose(make(chan *amqp.Error, 1))

	select {
	case <-f.done:
		return
	case closeErr := <-closeCh:
		if closeErr != nil {
			logger.Errorf("[MatchFeed] Connection lost: %v", closeErr)
		}
	}

	delay := time.Second
	const maxDelay = 60 * time.Second

	for {
		select {
		case <-f.done:
			return
		case <-time.After(delay):
		}

		logger.Printf("[MatchFeed] Reconnecting...")

		msgs, err := f.connectAndConsume()
		if err != nil {
			logger.Errorf("[MatchFeed] Reconnect failed: %v", err)
			delay *= 2
			if delay > maxDelay {
				delay = maxDelay
			}
			continue
		}

		logger.Println("[MatchFeed] Reconnected")
		go f.handleDeliveries(msgs)
		go f.monitorConnection()
		return
	}
}

func (f *MatchFeed) handleDeliveries(msgs <-chan amqp.Delivery) {
	for msg := range msgs {
		f.processDelivery(msg)
	}
}

// processDelivery 解析并入库一条比赛记录
func (f *MatchFeed) processDelivery(msg amqp.Delivery) {
	var match database.Match
	if err := json.Unmarshal(msg.Body, &match); err != nil {
		logger.Errorf("[MatchFeed] Invalid match payload (key=%s): %v", msg.RoutingKey, err)
		return
	}

	if match.Date == "" || match.Opponent == "" {
		logger.Errorf("[MatchFeed] Dropping match without date/opponent (key=%s)", msg.RoutingKey)
		return
	}

	id, err := f.store.InsertMatch(&match)
	if err != nil {
		logger.Errorf("[MatchFeed] Failed to store match: %v", err)
		return
	}

	logger.Printf("[MatchFeed] Stored match %d: %s vs %s (%s)", id, match.Date, match.Opponent, match.Competition)

	if f.cache != nil {
		f.cache.Invalidate()
	}

	if f.broadcaster != nil {
		f.broadcaster.Broadcast("data_updated", map[string]interface{}{
			"source":    "feed",
			"match_id":  id,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
