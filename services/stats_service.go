package services

import (
	"math"

	"football-analytics/database"
)

// FormStats 近期状态统计（最近 N 场窗口）
type FormStats struct {
	Wins          int              `json:"wins"`
	Draws         int              `json:"draws"`
	Losses        int              `json:"losses"`
	WinPercentage float64          `json:"winPercentage"`
	GoalsFor      int              `json:"goalsFor"`
	GoalsAgainst  int              `json:"goalsAgainst"`
	AvgPossession float64          `json:"avgPossession"`
	Matches       []database.Match `json:"matches"`
}

// MatchWindow 接口用于获取比赛窗口，避免统计层直接依赖存储实现
type MatchWindow interface {
	GetMatches(limit int) ([]database.Match, error)
}

// StatsService 从比赛窗口派生统计数据
type StatsService struct {
	store MatchWindow
}

func NewStatsService(store MatchWindow) *StatsService {
	return &StatsService{store: store}
}

// DefaultFormWindow 默认统计窗口大小
const DefaultFormWindow = 10

// FormStats 计算最近 windowSize 场比赛的状态统计
// windowSize <= 0 时使用默认窗口；窗口为空时返回全零记录，避免除零
func (s *StatsService) FormStats(windowSize int) (*FormStats, error) {
	if windowSize <= 0 {
		windowSize = DefaultFormWindow
	}

	matches, err := s.store.GetMatches(windowSize)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return &FormStats{Matches: []database.Match{}}, nil
	}

	stats := &FormStats{Matches: matches}
	var possessionSum float64

	for _, m := range matches {
		switch m.Result {
		case database.ResultWin:
			stats.Wins++
		case database.ResultDraw:
			stats.Draws++
		case database.ResultLoss:
			stats.Losses++
		}

		stats.GoalsFor += m.GoalsFor
		stats.GoalsAgainst += m.GoalsAgainst
		possessionSum += m.Possession
	}

	count := float64(len(matches))
	stats.WinPercentage = float64(stats.Wins) / count * 100

	// 控球率均值保留一位小数，按 0.5 远离零取整
	stats.AvgPossession = math.Round(possessionSum/count*10) / 10

	return stats, nil
}
