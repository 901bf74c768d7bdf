package abtest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// 自动停止原因
const (
	StopReasonMaxDuration    = "max_duration_reached"
	StopReasonWinnerSelected = "winner_selected"
)

// defaultEvalInterval 周期评估的默认间隔。
const defaultEvalInterval = time.Hour

// Evaluator 周期评估全部进行中的实验并执行自动停止规则。
// 评估独立于请求流量，幂等：同一份数据重复评估产生相同结论与动作。
type Evaluator struct {
	framework *Framework
	interval  time.Duration
	logger    *zap.Logger
}

// NewEvaluator 创建周期评估器。interval <= 0 时使用默认间隔。
func NewEvaluator(f *Framework, interval time.Duration) *Evaluator {
	if interval <= 0 {
		interval = defaultEvalInterval
	}
	return &Evaluator{
		framework: f,
		interval:  interval,
		logger:    f.logger,
	}
}

// Run 启动评估循环，阻塞直到 ctx 结束。
func (e *Evaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.EvaluateAll(ctx)
		}
	}
}

// EvaluateAll 评估全部进行中的实验。
func (e *Evaluator) EvaluateAll(ctx context.Context) {
	for _, testID := range e.framework.RunningTests() {
		if err := e.EvaluateTest(ctx, testID); err != nil {
			e.logger.Warn("test evaluation failed", zap.String("test_id", testID), zap.Error(err))
		}
	}
}

// EvaluateTest 评估单个实验并按规则自动停止：
//   - 超过 MaxTestDuration：无条件停止
//   - 开启自动选胜者，且最小样本量满足、统计显著、胜者置信度达标：停止
//
// 最小样本量未满足时统计动作是 no-op（只记录，不停止）。
func (e *Evaluator) EvaluateTest(ctx context.Context, testID string) error {
	test, err := e.framework.GetTest(ctx, testID)
	if err != nil {
		return err
	}
	if test.Status != core.TestStatusRunning {
		return nil
	}

	if test.Config.MaxTestDuration > 0 && test.StartedAt != nil {
		elapsed := e.framework.now().Sub(*test.StartedAt)
		if elapsed >= test.Config.MaxTestDuration {
			e.logger.Info("test exceeded max duration",
				zap.String("test_id", testID), zap.Duration("elapsed", elapsed))
			return e.framework.StopTest(ctx, testID, StopReasonMaxDuration)
		}
	}

	results, err := e.framework.GetTestResults(ctx, testID)
	if err != nil {
		return err
	}
	if !results.MinSampleSizeMet {
		return nil
	}

	e.logger.Debug("test evaluated",
		zap.String("test_id", testID),
		zap.Float64("z", results.ZScore),
		zap.Float64("p", results.PValue),
		zap.Bool("significant", results.Significant))

	if test.Config.EnableAutoWinnerSelection &&
		results.Significant &&
		results.RecommendedWinner != core.WinnerInconclusive &&
		results.WinnerConfidence >= test.Config.WinnerSelectionThreshold {
		e.logger.Info("winner selected",
			zap.String("test_id", testID),
			zap.String("winner", string(results.RecommendedWinner)),
			zap.Float64("confidence", results.WinnerConfidence))
		return e.framework.StopTest(ctx, testID, StopReasonWinnerSelected)
	}
	return nil
}
