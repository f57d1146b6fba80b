package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"football-analytics/config"
	"football-analytics/logger"
	"football-analytics/services"
)

type Server struct {
	config     *config.Config
	store      *services.MatchStore
	stats      *services.StatsService
	cache      *services.StatsCache
	bridge     services.ModelBridge
	hub        *Hub
	limiter    *RateLimiter
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

func NewServer(cfg *config.Config, store *services.MatchStore, stats *services.StatsService, cache *services.StatsCache, bridge services.ModelBridge, hub *Hub) *Server {
	return &Server{
		config:  cfg,
		store:   store,
		stats:   stats,
		cache:   cache,
		bridge:  bridge,
		hub:     hub,
		limiter: NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有来源(生产环境需要限制)
			},
		},
	}
}

func (s *Server) Start() error {
	router := mux.NewRouter()

	// API 路由
	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.Middleware)
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/matches", s.handleGetMatches).Methods("GET")
	api.HandleFunc("/matches/latest", s.handleGetLatestMatch).Methods("GET")
	api.HandleFunc("/matches/competition/{competition}", s.handleGetMatchesByCompetition).Methods("GET")
	api.HandleFunc("/stats/form", s.handleGetFormStats).Methods("GET")
	api.HandleFunc("/stats/season", s.handleGetSeasonStats).Methods("GET")
	api.HandleFunc("/analytics/dashboard", s.handleGetDashboard).Methods("GET")
	api.HandleFunc("/analytics/competitions", s.handleGetCompetitions).Methods("GET")
	api.HandleFunc("/model/train", s.handleTrainModel).Methods("POST")
	api.HandleFunc("/model/predict", s.handlePredict).Methods("POST")
	api.HandleFunc("/model/update-data", s.handleUpdateData).Methods("POST")

	// WebSocket 路由
	router.HandleFunc("/ws", s.handleWebSocket)

	// 未匹配路由
	router.NotFoundHandler = http.HandlerFunc(handleNotFound)

	// CORS 配置
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{s.config.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second, // 训练请求会等待脚本跑完
		IdleTimeout:  60 * time.Second,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
}

// handleWebSocket WebSocket 连接处理
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// 发送欢迎消息
	welcome := &Event{
		Type: "connected",
		Data: map[string]interface{}{
			"message": "Connected to analytics WebSocket",
			"time":    time.Now().Unix(),
		},
	}
	welcomeData, _ := json.Marshal(welcome)
	client.send <- welcomeData

	go client.writePump()
	go client.readPump()
}
