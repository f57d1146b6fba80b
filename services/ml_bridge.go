package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"football-analytics/config"
	"football-analytics/logger"
	"football-analytics/pkg/common"
)

// MLPrediction ML 脚本返回的预测结果
type MLPrediction struct {
	Prediction    string            `json:"prediction"`
	Probabilities ResultProbability `json:"probabilities"`
	Confidence    float64           `json:"confidence"`
	ModelVersion  string            `json:"model_version"`
}

// ResultProbability 三种结果的概率
type ResultProbability struct {
	Win  float64 `json:"Win"`
	Draw float64 `json:"Draw"`
	Loss float64 `json:"Loss"`
}

// ModelBridge 接口封装外部模型能力（训练 / 预测 / 数据刷新），
// 隔离具体的桥接机制
type ModelBridge interface {
	Train(ctx context.Context) ([]string, error)
	Predict(ctx context.Context, opponent, venue, competition string) (*MLPrediction, error)
	UpdateData(ctx context.Context) ([]string, error)
	ModelTrained() bool
}

// PythonBridge 通过子进程调用 Python 分析脚本
type PythonBridge struct {
	pythonPath string
	scriptPath string
	timeout    time.Duration

	mu      sync.RWMutex
	trained bool
}

func NewPythonBridge(cfg *config.Config) *PythonBridge {
	return &PythonBridge{
		pythonPath: cfg.PythonPath,
		scriptPath: cfg.ScriptPath,
		timeout:    cfg.BridgeTimeout,
	}
}

// Train 训练模型，返回脚本的输出行
func (b *PythonBridge) Train(ctx context.Context) ([]string, error) {
	lines, err := b.run(ctx, "--train-model")
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.trained = true
	b.mu.Unlock()

	return lines, nil
}

// Predict 预测指定比赛，脚本输出单个 JSON 对象
func (b *PythonBridge) Predict(ctx context.Context, opponent, venue, competition string) (*MLPrediction, error) {
	lines, err := b.run(ctx, "--predict", opponent, venue, competition)
	if err != nil {
		return nil, err
	}

	return parsePrediction(lines)
}

// UpdateData 触发数据刷新，返回脚本的输出行
func (b *PythonBridge) UpdateData(ctx context.Context) ([]string, error) {
	return b.run(ctx, "--update-data")
}

// ModelTrained 模型是否已在本进程内训练过
func (b *PythonBridge) ModelTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.trained
}

// run 执行脚本并按行返回 stdout
func (b *PythonBridge) run(ctx context.Context, args ...string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	cmdArgs := append([]string{"-u", b.scriptPath}, args...)
	cmd := exec.CommandContext(ctx, b.pythonPath, cmdArgs...)

	logger.Printf("[MLBridge] Running %s %s", b.pythonPath, strings.Join(cmdArgs, " "))

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: script failed: %s", common.ErrBridgeFailed, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%w: script failed: %v", common.ErrBridgeFailed, err)
	}

	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines, nil
}

// parsePrediction 从输出行中解析预测 JSON（取最后一个非空行，
// 脚本可能在结果前打印进度信息）
func parsePrediction(lines []string) (*MLPrediction, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no prediction returned", common.ErrBridgeFailed)
	}

	last := lines[len(lines)-1]

	var prediction MLPrediction
	if err := json.Unmarshal([]byte(last), &prediction); err != nil {
		return nil, fmt.Errorf("%w: malformed prediction output: %v", common.ErrBridgeFailed, err)
	}

	if prediction.Prediction == "" {
		return nil, fmt.Errorf("%w: prediction output missing result", common.ErrBridgeFailed)
	}

	return &prediction, nil
}
