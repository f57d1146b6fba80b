package database

import (
	"time"
)

// Match 历史比赛记录
type Match struct {
	ID            int64     `json:"id" db:"id"`
	Date          string    `json:"date" db:"date"`
	Opponent      string    `json:"opponent" db:"opponent"`
	Venue         string    `json:"venue" db:"venue"`
	Competition   string    `json:"competition" db:"competition"`
	GoalsFor      int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst  int       `json:"goals_against" db:"goals_against"`
	Result        string    `json:"result" db:"result"`
	Possession    float64   `json:"possession" db:"possession"`
	Shots         int       `json:"shots" db:"shots"`
	ShotsOnTarget int       `json:"shots_on_target" db:"shots_on_target"`
	Corners       int       `json:"corners" db:"corners"`
	Fouls         int       `json:"fouls" db:"fouls"`
	Cards         int       `json:"cards" db:"cards"`
	XG            float64   `json:"xg" db:"xg"`
	OpponentXG    float64   `json:"opponent_xg" db:"opponent_xg"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// 比赛结果枚举值
const (
	ResultWin  = "W"
	ResultDraw = "D"
	ResultLoss = "L"
)

// PredictionInput 待写入的预测记录
type PredictionInput struct {
	MatchDate       string  `json:"match_date"`
	Opponent        string  `json:"opponent"`
	Venue           string  `json:"venue"`
	Competition     string  `json:"competition"`
	PredictedResult string  `json:"predicted_result"`
	WinProbability  float64 `json:"win_probability"`
	DrawProbability float64 `json:"draw_probability"`
	LossProbability float64 `json:"loss_probability"`
	Confidence      float64 `json:"confidence"`
	ModelVersion    string  `json:"model_version"`
}

// SeasonStats 赛季统计（最近 365 天窗口的聚合结果）
// 窗口为空时计数字段为 0，平均值字段为 nil
type SeasonStats struct {
	TotalMatches       int      `json:"total_matches"`
	Wins               int      `json:"wins"`
	Draws              int      `json:"draws"`
	Losses             int      `json:"losses"`
	TotalGoalsFor      int      `json:"total_goals_for"`
	TotalGoalsAgainst  int      `json:"total_goals_against"`
	AvgPossession      *float64 `json:"avg_possession"`
	TotalShots         int      `json:"total_shots"`
	TotalShotsOnTarget int      `json:"total_shots_on_target"`
	AvgXG              *float64 `json:"avg_xg"`
	CleanSheets        int      `json:"clean_sheets"`
}

// Competition 参赛赛事及场次
type Competition struct {
	Competition string `json:"competition"`
	Matches     int    `json:"matches"`
}
