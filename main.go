package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"football-analytics/config"
	"football-analytics/database"
	"football-analytics/logger"
	"football-analytics/services"
	"football-analytics/web"
)

func main() {
	logger.Println("Starting Football Analytics Service...")

	// 加载配置
	cfg := config.Load()

	// 连接数据库
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 运行数据库迁移
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	logger.Println("Database connected and migrated")

	// 创建运维通知器
	notifier := services.NewWebhookNotifier(cfg.OpsWebhookURL)

	// 创建存储和统计服务
	store := services.NewMatchStore(db)
	stats := services.NewStatsService(store)
	cache := services.NewStatsCache(30 * time.Second)

	// 创建 WebSocket Hub
	hub := web.NewHub()
	go hub.Run()

	// 创建 ML 桥接
	bridge := services.NewPythonBridge(cfg)

	// 启动比赛数据源（可选）
	var feed *services.MatchFeed
	if cfg.FeedAMQPURL != "" {
		feed = services.NewMatchFeed(cfg, store, hub, cache)
		if err := feed.Start(); err != nil {
			logger.Errorf("Match feed failed to start: %v", err)
			if nerr := notifier.NotifyError("Match Feed", err.Error()); nerr != nil {
				logger.Errorf("Failed to send feed failure notification: %v", nerr)
			}
		} else {
			logger.Println("Match feed started")
		}
	}

	// 启动 Web 服务器
	server := web.NewServer(cfg, store, stats, cache, bridge, hub)

	go func() {
		if err := server.Start(); err != nil {
			if nerr := notifier.NotifyError("Web Server", err.Error()); nerr != nil {
				logger.Errorf("Failed to send server failure notification: %v", nerr)
			}
			logger.Fatalf("Web server error: %v", err)
		}
	}()

	logger.Printf("Web server started on port %s", cfg.Port)

	if err := notifier.NotifyServiceStart(cfg.Environment); err != nil {
		logger.Errorf("Failed to send startup notification: %v", err)
	}

	logger.Println("Service is running. Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("Shutting down service...")

	// 清理资源
	if feed != nil {
		feed.Stop()
	}
	server.Stop()

	logger.Println("Service stopped")
}
