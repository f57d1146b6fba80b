package services

import (
	"database/sql"
	"fmt"
	"time"

	"football-analytics/database"
	"football-analytics/pkg/common"
)

// MatchStore 比赛与预测记录的存储层，统计查询的唯一数据来源
type MatchStore struct {
	db *sql.DB
}

func NewMatchStore(db *sql.DB) *MatchStore {
	return &MatchStore{db: db}
}

const matchColumns = `id, date, opponent, venue, competition, goals_for, goals_against,
	       result, possession, shots, shots_on_target, corners, fouls, cards,
	       xg, opponent_xg, created_at`

// GetMatches 获取最近的比赛，按日期倒序（同一天按 id 倒序保证顺序稳定）
func (s *MatchStore) GetMatches(limit int) ([]database.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		ORDER BY date DESC, id DESC
		LIMIT $1
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query matches: %v", common.ErrStorageFailed, err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetMatchesByCompetition 获取指定赛事的全部比赛（赛事名精确匹配）
func (s *MatchStore) GetMatchesByCompetition(competition string) ([]database.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE competition = $1
		ORDER BY date DESC, id DESC
	`

	rows, err := s.db.Query(query, competition)
	if err != nil {
		return nil, fmt.Errorf("%w: query matches by competition: %v", common.ErrStorageFailed, err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetLatestMatch 获取最近一场比赛，无记录时返回 nil
func (s *MatchStore) GetLatestMatch() (*database.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		ORDER BY date DESC, id DESC
		LIMIT 1
	`

	row := s.db.QueryRow(query)
	match, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query latest match: %v", common.ErrStorageFailed, err)
	}

	return match, nil
}

// InsertMatch 写入一条比赛记录，返回新 id（数据源 / 批量导入使用）
func (s *MatchStore) InsertMatch(m *database.Match) (int64, error) {
	query := `
		INSERT INTO matches
		(date, opponent, venue, competition, goals_for, goals_against, result,
		 possession, shots, shots_on_target, corners, fouls, cards, xg, opponent_xg)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(query,
		m.Date, m.Opponent, m.Venue, m.Competition, m.GoalsFor, m.GoalsAgainst,
		m.Result, m.Possession, m.Shots, m.ShotsOnTarget, m.Corners, m.Fouls,
		m.Cards, m.XG, m.OpponentXG,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert match: %v", common.ErrStorageFailed, err)
	}

	return id, nil
}

// InsertPrediction 写入一条预测记录，返回新 id
func (s *MatchStore) InsertPrediction(p *database.PredictionInput) (int64, error) {
	query := `
		INSERT INTO predictions
		(match_date, opponent, venue, competition, predicted_result,
		 win_probability, draw_probability, loss_probability, confidence, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err := s.db.QueryRow(query,
		p.MatchDate, p.Opponent, p.Venue, p.Competition, p.PredictedResult,
		p.WinProbability, p.DrawProbability, p.LossProbability, p.Confidence, p.ModelVersion,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%w: insert prediction: %v", common.ErrStorageFailed, err)
	}

	return id, nil
}

// seasonStatsQuery 赛季聚合只读 matches 表，predictions 表只写不参与统计
const seasonStatsQuery = `
	SELECT
		COUNT(*) AS total_matches,
		COALESCE(SUM(CASE WHEN result = 'W' THEN 1 ELSE 0 END), 0) AS wins,
		COALESCE(SUM(CASE WHEN result = 'D' THEN 1 ELSE 0 END), 0) AS draws,
		COALESCE(SUM(CASE WHEN result = 'L' THEN 1 ELSE 0 END), 0) AS losses,
		COALESCE(SUM(goals_for), 0) AS total_goals_for,
		COALESCE(SUM(goals_against), 0) AS total_goals_against,
		AVG(possession) AS avg_possession,
		COALESCE(SUM(shots), 0) AS total_shots,
		COALESCE(SUM(shots_on_target), 0) AS total_shots_on_target,
		AVG(xg) AS avg_xg,
		COALESCE(SUM(CASE WHEN goals_against = 0 THEN 1 ELSE 0 END), 0) AS clean_sheets
	FROM matches
	WHERE date >= $1
`

// GetSeasonStats 获取最近 365 天窗口的赛季聚合
// 窗口为空时 COUNT/SUM 为 0，AVG 为 NULL，对应字段保持 nil
func (s *MatchStore) GetSeasonStats() (*database.SeasonStats, error) {
	cutoff := time.Now().AddDate(0, 0, -365).Format("2006-01-02")

	stats, err := scanSeasonStats(s.db.QueryRow(seasonStatsQuery, cutoff))
	if err != nil {
		return nil, fmt.Errorf("%w: query season stats: %v", common.ErrStorageFailed, err)
	}

	return stats, nil
}

// scanSeasonStats 扫描赛季聚合结果行，NULL 平均值映射为 nil 指针
func scanSeasonStats(row rowScanner) (*database.SeasonStats, error) {
	var stats database.SeasonStats
	var avgPossession, avgXG sql.NullFloat64

	err := row.Scan(
		&stats.TotalMatches, &stats.Wins, &stats.Draws, &stats.Losses,
		&stats.TotalGoalsFor, &stats.TotalGoalsAgainst, &avgPossession,
		&stats.TotalShots, &stats.TotalShotsOnTarget, &avgXG, &stats.CleanSheets,
	)
	if err != nil {
		return nil, err
	}

	if avgPossession.Valid {
		stats.AvgPossession = &avgPossession.Float64
	}
	if avgXG.Valid {
		stats.AvgXG = &avgXG.Float64
	}

	return &stats, nil
}

// GetCompetitions 获取参赛赛事列表，按场次倒序
func (s *MatchStore) GetCompetitions() ([]database.Competition, error) {
	query := `
		SELECT competition, COUNT(*) AS matches
		FROM matches
		GROUP BY competition
		ORDER BY matches DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: query competitions: %v", common.ErrStorageFailed, err)
	}
	defer rows.Close()

	competitions := []database.Competition{}
	for rows.Next() {
		var c database.Competition
		if err := rows.Scan(&c.Competition, &c.Matches); err != nil {
			return nil, fmt.Errorf("%w: scan competition: %v", common.ErrStorageFailed, err)
		}
		competitions = append(competitions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate competitions: %v", common.ErrStorageFailed, err)
	}

	return competitions, nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows 的扫描接口
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*database.Match, error) {
	var m database.Match
	var result sql.NullString
	var possession, xg, opponentXG sql.NullFloat64
	var shots, shotsOnTarget, corners, fouls, cards sql.NullInt64

	err := row.Scan(
		&m.ID, &m.Date, &m.Opponent, &m.Venue, &m.Competition,
		&m.GoalsFor, &m.GoalsAgainst, &result, &possession,
		&shots, &shotsOnTarget, &corners, &fouls, &cards,
		&xg, &opponentXG, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	m.Result = result.String
	m.Possession = possession.Float64
	m.Shots = int(shots.Int64)
	m.ShotsOnTarget = int(shotsOnTarget.Int64)
	m.Corners = int(corners.Int64)
	m.Fouls = int(fouls.Int64)
	m.Cards = int(cards.Int64)
	m.XG = xg.Float64
	m.OpponentXG = opponentXG.Float64

	return &m, nil
}

func scanMatches(rows *sql.Rows) ([]database.Match, error) {
	matches := []database.Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan match: %v", common.ErrStorageFailed, err)
		}
		matches = append(matches, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate matches: %v", common.ErrStorageFailed, err)
	}

	return matches, nil
}
