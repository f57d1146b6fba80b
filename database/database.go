package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect 连接到数据库
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 运行数据库迁移
func Migrate(db *sql.DB) error {
	migrations := []string{
		// 历史比赛表
		`CREATE TABLE IF NOT EXISTS matches (
			id BIGSERIAL PRIMARY KEY,
			date TEXT NOT NULL,
			opponent TEXT NOT NULL,
			venue TEXT NOT NULL,
			competition TEXT NOT NULL,
			goals_for INTEGER NOT NULL DEFAULT 0,
			goals_against INTEGER NOT NULL DEFAULT 0,
			result TEXT,
			possession REAL,
			shots INTEGER,
			shots_on_target INTEGER,
			corners INTEGER,
			fouls INTEGER,
			cards INTEGER,
			xg REAL,
			opponent_xg REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_date ON matches(date)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_competition ON matches(competition)`,

		// 预测记录表
		`CREATE TABLE IF NOT EXISTS predictions (
			id BIGSERIAL PRIMARY KEY,
			match_date TEXT,
			opponent TEXT,
			venue TEXT,
			competition TEXT,
			predicted_result TEXT,
			win_probability REAL,
			draw_probability REAL,
			loss_probability REAL,
			confidence REAL,
			model_version TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at)`,

		// 性能指标表（预留，当前服务不写入）
		`CREATE TABLE IF NOT EXISTS performance_metrics (
			id BIGSERIAL PRIMARY KEY,
			metric_name TEXT,
			metric_value REAL,
			period TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
