package services

import (
	"sync"
	"testing"

	"football-analytics/config"
)

func TestMatchFeedStopIdempotent(t *testing.T) {
	feed := NewMatchFeed(&config.Config{}, nil, nil, nil)

	// 未启动时 Stop 应安全，重复调用不应 panic
	feed.Stop()
	feed.Stop()
}

func TestMatchFeedStopConcurrent(t *testing.T) {
	feed := NewMatchFeed(&config.Config{}, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			feed.Stop()
		}()
	}
	wg.Wait()
}
