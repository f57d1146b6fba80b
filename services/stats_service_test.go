package services

import (
	"testing"

	"football-analytics/database"
)

// fakeWindow 固定窗口数据源
type fakeWindow struct {
	matches   []database.Match
	lastLimit int
}

func (f *fakeWindow) GetMatches(limit int) ([]database.Match, error) {
	f.lastLimit = limit
	if limit < len(f.matches) {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

func TestFormStatsEmptyWindow(t *testing.T) {
	svc := NewStatsService(&fakeWindow{})

	stats, err := svc.FormStats(5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Wins != 0 || stats.Draws != 0 || stats.Losses != 0 {
		t.Errorf("Expected zero counts, got W=%d D=%d L=%d", stats.Wins, stats.Draws, stats.Losses)
	}
	if stats.WinPercentage != 0 {
		t.Errorf("Expected winPercentage 0, got %v", stats.WinPercentage)
	}
	if stats.AvgPossession != 0 {
		t.Errorf("Expected avgPossession 0, got %v", stats.AvgPossession)
	}
	if stats.Matches == nil {
		t.Error("Expected empty matches slice, got nil")
	}
	if len(stats.Matches) != 0 {
		t.Errorf("Expected empty matches slice, got %d entries", len(stats.Matches))
	}
}

func TestFormStatsCounts(t *testing.T) {
	window := &fakeWindow{matches: []database.Match{
		{Result: database.ResultWin, GoalsFor: 3, GoalsAgainst: 1, Possession: 60},
		{Result: database.ResultWin, GoalsFor: 2, GoalsAgainst: 0, Possession: 55},
		{Result: database.ResultDraw, GoalsFor: 1, GoalsAgainst: 1, Possession: 50},
		{Result: database.ResultLoss, GoalsFor: 0, GoalsAgainst: 2, Possession: 45},
		{Result: database.ResultWin, GoalsFor: 4, GoalsAgainst: 2, Possession: 65},
	}}
	svc := NewStatsService(window)

	stats, err := svc.FormStats(5)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Wins != 3 {
		t.Errorf("Expected 3 wins, got %d", stats.Wins)
	}
	if stats.Draws != 1 {
		t.Errorf("Expected 1 draw, got %d", stats.Draws)
	}
	if stats.Losses != 1 {
		t.Errorf("Expected 1 loss, got %d", stats.Losses)
	}
	if stats.Wins+stats.Draws+stats.Losses != len(window.matches) {
		t.Errorf("Expected counts to sum to %d, got %d", len(window.matches), stats.Wins+stats.Draws+stats.Losses)
	}
	if stats.WinPercentage != 60 {
		t.Errorf("Expected winPercentage 60, got %v", stats.WinPercentage)
	}
	if stats.GoalsFor != 10 {
		t.Errorf("Expected 10 goals for, got %d", stats.GoalsFor)
	}
	if stats.GoalsAgainst != 6 {
		t.Errorf("Expected 6 goals against, got %d", stats.GoalsAgainst)
	}
	if len(stats.Matches) != 5 {
		t.Errorf("Expected 5 matches in output, got %d", len(stats.Matches))
	}
}

func TestFormStatsPossessionRounding(t *testing.T) {
	// 平均值 57.8566... 应舍入为 57.9（一位小数，0.5 远离零）
	window := &fakeWindow{matches: []database.Match{
		{Result: database.ResultWin, Possession: 55.24},
		{Result: database.ResultDraw, Possession: 60.0},
		{Result: database.ResultLoss, Possession: 58.33},
	}}
	svc := NewStatsService(window)

	stats, err := svc.FormStats(3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.AvgPossession != 57.9 {
		t.Errorf("Expected avgPossession 57.9, got %v", stats.AvgPossession)
	}
}

func TestFormStatsWinPercentageExact(t *testing.T) {
	window := &fakeWindow{matches: []database.Match{
		{Result: database.ResultWin, Possession: 50},
		{Result: database.ResultLoss, Possession: 50},
		{Result: database.ResultLoss, Possession: 50},
	}}
	svc := NewStatsService(window)

	stats, err := svc.FormStats(3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := float64(1) / 3 * 100
	if stats.WinPercentage != expected {
		t.Errorf("Expected winPercentage %v (unrounded), got %v", expected, stats.WinPercentage)
	}
}

func TestFormStatsDefaultWindow(t *testing.T) {
	window := &fakeWindow{}
	svc := NewStatsService(window)

	if _, err := svc.FormStats(0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if window.lastLimit != DefaultFormWindow {
		t.Errorf("Expected default window %d, got %d", DefaultFormWindow, window.lastLimit)
	}
}

func TestFormStatsUnknownResultNotCounted(t *testing.T) {
	// 结果字段按原样比较，不做大小写或空白归一化
	window := &fakeWindow{matches: []database.Match{
		{Result: "w", Possession: 50},
		{Result: " W", Possession: 50},
		{Result: database.ResultWin, Possession: 50},
	}}
	svc := NewStatsService(window)

	stats, err := svc.FormStats(3)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if stats.Wins != 1 {
		t.Errorf("Expected 1 win, got %d", stats.Wins)
	}
	if stats.Draws != 0 || stats.Losses != 0 {
		t.Errorf("Expected no draws/losses, got D=%d L=%d", stats.Draws, stats.Losses)
	}
}
