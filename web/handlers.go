package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"football-analytics/database"
	"football-analytics/logger"
	"football-analytics/pkg/common"
	"football-analytics/services"
)

// APIResponse 统一的 API 响应信封
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Total   *int        `json:"total,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Details string      `json:"details,omitempty"`
}

const apiVersion = "2.0.0"

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// fail 返回错误响应，详细信息只在非生产环境下暴露
func (s *Server) fail(w http.ResponseWriter, status int, message string, err error) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	if err != nil {
		logger.Errorf("%s: %v", message, err)
		if !s.config.IsProduction() {
			response.Details = err.Error()
		} else {
			response.Details = "Something went wrong"
		}
	}

	writeJSON(w, status, response)
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":       "operational",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"version":      apiVersion,
			"modelTrained": s.bridge.ModelTrained(),
		},
	})
}

// handleGetMatches 获取比赛列表
func (s *Server) handleGetMatches(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 50
	}

	matches, err := s.store.GetMatches(limit)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch matches", err)
		return
	}

	total := len(matches)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    matches,
		Total:   &total,
	})
}

// handleGetLatestMatch 获取最近一场比赛
func (s *Server) handleGetLatestMatch(w http.ResponseWriter, r *http.Request) {
	match, err := s.store.GetLatestMatch()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch latest match", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    match,
	})
}

// handleGetMatchesByCompetition 获取指定赛事的比赛
func (s *Server) handleGetMatchesByCompetition(w http.ResponseWriter, r *http.Request) {
	competition := mux.Vars(r)["competition"]

	matches, err := s.store.GetMatchesByCompetition(competition)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch matches by competition", err)
		return
	}

	total := len(matches)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    matches,
		Total:   &total,
	})
}

// handleGetFormStats 获取近期状态统计
func (s *Server) handleGetFormStats(w http.ResponseWriter, r *http.Request) {
	window, _ := strconv.Atoi(r.URL.Query().Get("matches"))
	if window <= 0 {
		window = services.DefaultFormWindow
	}

	cacheKey := fmt.Sprintf("form_%d", window)
	if cached, ok := s.cache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cached})
		return
	}

	stats, err := s.stats.FormStats(window)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch form stats", err)
		return
	}

	s.cache.Set(cacheKey, stats)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    stats,
	})
}

// handleGetSeasonStats 获取赛季统计
func (s *Server) handleGetSeasonStats(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.cache.Get("season"); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cached})
		return
	}

	stats, err := s.store.GetSeasonStats()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch season stats", err)
		return
	}

	s.cache.Set("season", stats)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    stats,
	})
}

// handleGetDashboard 获取仪表盘数据（最近比赛 + 状态 + 赛季统计）
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	latestMatch, err := s.store.GetLatestMatch()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch dashboard data", err)
		return
	}

	formStats, err := s.stats.FormStats(services.DefaultFormWindow)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch dashboard data", err)
		return
	}

	seasonStats, err := s.store.GetSeasonStats()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch dashboard data", err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"latestMatch": latestMatch,
			"formStats":   formStats,
			"seasonStats": seasonStats,
			"lastUpdated": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleGetCompetitions 获取参赛赛事列表
func (s *Server) handleGetCompetitions(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.cache.Get("competitions"); ok {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: cached})
		return
	}

	competitions, err := s.store.GetCompetitions()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to fetch competitions", err)
		return
	}

	s.cache.Set("competitions", competitions)
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    competitions,
	})
}

// handleTrainModel 训练模型并广播 model_updated 事件
func (s *Server) handleTrainModel(w http.ResponseWriter, r *http.Request) {
	results, err := s.bridge.Train(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to train model", err)
		return
	}

	s.hub.Broadcast(EventModelUpdated, map[string]interface{}{
		"trained":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Model trained successfully",
		Data:    results,
	})
}

// predictRequest 预测请求体
type predictRequest struct {
	Opponent    string `json:"opponent"`
	Venue       string `json:"venue"`
	Competition string `json:"competition"`
}

// validate 三个字段全部必填，校验在调用桥接之前完成
func (r *predictRequest) validate() error {
	if r.Opponent == "" || r.Venue == "" || r.Competition == "" {
		return fmt.Errorf("%w: opponent, venue, competition are required", common.ErrValidationFailed)
	}
	return nil
}

// handlePredict 生成预测，入库并广播 new_prediction 事件
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	if err := req.validate(); err != nil {
		logger.Printf("Rejected prediction request: %v", err)
		writeJSON(w, http.StatusBadRequest, APIResponse{
			Success: false,
			Error:   "Missing required fields: opponent, venue, competition",
		})
		return
	}

	prediction, err := s.bridge.Predict(r.Context(), req.Opponent, req.Venue, req.Competition)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to generate prediction", err)
		return
	}

	// 预测结果写入审计表（只写不读）
	_, err = s.store.InsertPrediction(&database.PredictionInput{
		MatchDate:       time.Now().UTC().Format("2006-01-02"),
		Opponent:        req.Opponent,
		Venue:           req.Venue,
		Competition:     req.Competition,
		PredictedResult: prediction.Prediction,
		WinProbability:  prediction.Probabilities.Win,
		DrawProbability: prediction.Probabilities.Draw,
		LossProbability: prediction.Probabilities.Loss,
		Confidence:      prediction.Confidence,
		ModelVersion:    prediction.ModelVersion,
	})
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to generate prediction", err)
		return
	}

	s.hub.Broadcast(EventNewPrediction, prediction)

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    prediction,
	})
}

// handleUpdateData 触发数据刷新并广播 data_updated 事件
func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	results, err := s.bridge.UpdateData(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Failed to update data", err)
		return
	}

	// 刷新后的统计需要重新计算
	s.cache.Invalidate()

	s.hub.Broadcast(EventDataUpdated, map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Data updated successfully",
		Data:    results,
	})
}

// handleNotFound 未匹配路由
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, APIResponse{
		Success: false,
		Error:   "Endpoint not found",
	})
}
