package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"football-analytics/database"
	"football-analytics/pkg/common"
	"football-analytics/services"
)

// 批量导入历史比赛数据
// 用法: seed <matches.csv>
// CSV 列: date,opponent,venue,competition,goals_for,goals_against,result,
//          possession,shots,shots_on_target,corners,fouls,cards,xg,opponent_xg
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: seed <matches.csv>")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := database.Connect(dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	store := services.NewMatchStore(db)
	reader := csv.NewReader(file)

	// 跳过表头
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}

	inserted := 0
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Fatalf("Failed to read CSV line %d: %v", line, err)
		}

		match, err := parseMatch(record)
		if err != nil {
			log.Fatalf("Invalid match on line %d: %v", line, err)
		}

		// 结果列按原样入库，但与比分不一致时给出警告
		if expected := resultFromScore(match.GoalsFor, match.GoalsAgainst); match.Result != expected {
			log.Printf("Warning: line %d result %q disagrees with score %d-%d",
				line, match.Result, match.GoalsFor, match.GoalsAgainst)
		}

		if _, err := store.InsertMatch(match); err != nil {
			log.Fatalf("Failed to insert match on line %d: %v", line, err)
		}
		inserted++
	}

	log.Printf("Inserted %d matches", inserted)
}

func parseMatch(record []string) (*database.Match, error) {
	if len(record) < 15 {
		return nil, fmt.Errorf("%w: expected at least 15 fields, got %d", common.ErrInvalidInput, len(record))
	}

	m := &database.Match{
		Date:        record[0],
		Opponent:    record[1],
		Venue:       record[2],
		Competition: record[3],
		Result:      record[6],
	}

	var err error
	if m.GoalsFor, err = strconv.Atoi(record[4]); err != nil {
		return nil, err
	}
	if m.GoalsAgainst, err = strconv.Atoi(record[5]); err != nil {
		return nil, err
	}
	if m.Possession, err = strconv.ParseFloat(record[7], 64); err != nil {
		return nil, err
	}
	if m.Shots, err = strconv.Atoi(record[8]); err != nil {
		return nil, err
	}
	if m.ShotsOnTarget, err = strconv.Atoi(record[9]); err != nil {
		return nil, err
	}
	if m.Corners, err = strconv.Atoi(record[10]); err != nil {
		return nil, err
	}
	if m.Fouls, err = strconv.Atoi(record[11]); err != nil {
		return nil, err
	}
	if m.Cards, err = strconv.Atoi(record[12]); err != nil {
		return nil, err
	}
	if m.XG, err = strconv.ParseFloat(record[13], 64); err != nil {
		return nil, err
	}
	if m.OpponentXG, err = strconv.ParseFloat(record[14], 64); err != nil {
		return nil, err
	}

	return m, nil
}

func resultFromScore(goalsFor, goalsAgainst int) string {
	switch {
	case goalsFor > goalsAgainst:
		return database.ResultWin
	case goalsFor < goalsAgainst:
		return database.ResultLoss
	default:
		return database.ResultDraw
	}
}
