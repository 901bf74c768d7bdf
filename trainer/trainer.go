// Package trainer 实现模型训练：六种算法族的轻量拟合、训练进度事件、
// 早停、评估指标与超参搜索。
//
// 一个 Trainer 实例同一时刻只允许一次训练（互斥长操作）；
// 训练中再次调用 Train 立即返回 IN_PROGRESS 错误，绝不排队或交织。
package trainer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// ErrTrainingInProgress 已有训练进行中。
var ErrTrainingInProgress = core.NewDomainError(core.ModuleTrainer, core.ErrorCodeInProgress, "training already in progress")

// ErrTrainingCanceled 训练被取消。
var ErrTrainingCanceled = core.NewDomainError(core.ModuleTrainer, core.ErrorCodeCanceled, "training canceled")

// IsTrainingInProgress 检查错误是否为训练互斥冲突。
func IsTrainingInProgress(err error) bool {
	derr := core.GetDomainError(err)
	return derr != nil && derr.Module == core.ModuleTrainer && derr.Code == core.ErrorCodeInProgress
}

// IsTrainingCanceled 检查错误是否为训练取消。
func IsTrainingCanceled(err error) bool {
	derr := core.GetDomainError(err)
	return derr != nil && derr.Module == core.ModuleTrainer && derr.Code == core.ErrorCodeCanceled
}

// 训练配置默认值
const (
	defaultMaxIterations = 100
	defaultLearningRate  = 0.1
	defaultTolerance     = 1e-4
	defaultHiddenLayer   = 16
)

// TrainResult 是一次训练运行的完整产出。
type TrainResult struct {
	Model           *core.MLModel       `json:"model"`
	Metrics         core.ModelMetrics   `json:"metrics"`
	History         []core.TrainingStep `json:"history"`
	Hyperparameters map[string]float64  `json:"hyperparameters"`
	TrainingTime    time.Duration       `json:"training_time"`
}

// Trainer 是训练器。零值不可用，必须通过 NewTrainer 创建。
type Trainer struct {
	logger *zap.Logger
	now    func() time.Time

	// training 互斥标志：0 空闲，1 训练中
	training atomic.Int32
	// cancelFlag 协作式取消标志，训练循环在每个迭代边界检查
	cancelFlag atomic.Bool
}

// TrainerOption 配置 Trainer。
type TrainerOption func(*Trainer)

// WithLogger 注入日志器，默认不输出。
func WithLogger(logger *zap.Logger) TrainerOption {
	return func(t *Trainer) { t.logger = logger }
}

// WithClock 注入时间源，用于测试。
func WithClock(now func() time.Time) TrainerOption {
	return func(t *Trainer) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTrainer 创建训练器。
func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t
}

// TrainOption 配置单次训练运行。
type TrainOption func(*trainRun)

// WithProgressChannel 订阅训练进度事件。
// 发送永不阻塞训练循环：channel 满时丢弃最旧的中间事件；
// 终态事件（完成时 Progress = 1，失败/取消时 Failed = true）保证送达。
// channel 必须带缓冲，无缓冲 channel 的中间事件会被直接丢弃。
func WithProgressChannel(ch chan core.TrainingStep) TrainOption {
	return func(r *trainRun) { r.progressCh = ch }
}

// WithProgressFunc 以回调方式订阅进度，回调在训练 goroutine 内同步执行。
func WithProgressFunc(fn func(core.TrainingStep)) TrainOption {
	return func(r *trainRun) { r.progressFn = fn }
}

// Training 返回当前是否有训练进行中。
func (t *Trainer) Training() bool {
	return t.training.Load() == 1
}

// Cancel 请求取消进行中的训练。取消是协作式的：
// 训练循环在下一个迭代边界观察到标志后停止，Train 返回 CANCELED 错误。
// 没有训练进行中时调用无效果。
func (t *Trainer) Cancel() {
	if t.Training() {
		t.cancelFlag.Store(true)
	}
}

// Train 执行一次完整训练：拟合、评估、产出不可变的模型工件。
//
// 互斥：同一 Trainer 上并发的第二次 Train 立即返回 ErrTrainingInProgress，
// 不影响进行中的训练。取消（Cancel 或 ctx）后不产出任何模型状态。
func (t *Trainer) Train(ctx context.Context, data *core.TrainingData, cfg core.ModelConfig, opts ...TrainOption) (*TrainResult, error) {
	if !t.training.CompareAndSwap(0, 1) {
		return nil, ErrTrainingInProgress
	}
	defer func() {
		t.cancelFlag.Store(false)
		t.training.Store(0)
	}()

	cfg = withDefaults(cfg)
	if !cfg.Algorithm.Valid() {
		return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeConfig,
			fmt.Sprintf("unknown algorithm: %q", cfg.Algorithm))
	}
	if err := data.Validate(); err != nil {
		return nil, err
	}

	run := &trainRun{
		trainer: t,
		ctx:     ctx,
		cfg:     cfg,
		data:    data,
	}
	for _, opt := range opts {
		opt(run)
	}

	started := t.now()
	t.logger.Info("training started",
		zap.String("name", cfg.Name),
		zap.String("algorithm", string(cfg.Algorithm)),
		zap.Int("train_samples", data.Train.Len()),
		zap.Int("feature_dim", data.FeatureDim()))

	params, err := t.fit(run)
	if err != nil {
		t.logger.Warn("training aborted", zap.String("name", cfg.Name), zap.Error(err))
		run.emitFailure()
		return nil, err
	}
	run.emitTerminal()

	elapsed := t.now().Sub(started)
	artifact := t.buildArtifact(cfg, params, run, elapsed)

	metrics, err := evaluateArtifact(artifact, data.Test)
	if err != nil {
		return nil, err
	}
	artifact.Metrics = metrics

	t.logger.Info("training finished",
		zap.String("model_id", artifact.ID),
		zap.Duration("elapsed", elapsed),
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("auc", metrics.AUC))

	return &TrainResult{
		Model:           artifact,
		Metrics:         metrics,
		History:         run.history,
		Hyperparameters: hyperparameters(cfg),
		TrainingTime:    elapsed,
	}, nil
}

// fit 按算法族分发拟合。
func (t *Trainer) fit(run *trainRun) (core.ModelParameters, error) {
	switch run.cfg.Algorithm {
	case core.AlgorithmLogisticRegression:
		return fitLogistic(run)
	case core.AlgorithmSVM:
		return fitSVM(run)
	case core.AlgorithmRandomForest:
		return fitRandomForest(run)
	case core.AlgorithmGradientBoosting:
		return fitBoosting(run, false)
	case core.AlgorithmXGBoost:
		return fitBoosting(run, true)
	case core.AlgorithmNeuralNetwork:
		return fitNetwork(run)
	default:
		return core.ModelParameters{}, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeConfig,
			fmt.Sprintf("unknown algorithm: %q", run.cfg.Algorithm))
	}
}

// buildArtifact 组装不可变的模型工件。
func (t *Trainer) buildArtifact(cfg core.ModelConfig, params core.ModelParameters, run *trainRun, elapsed time.Duration) *core.MLModel {
	now := t.now()
	return &core.MLModel{
		ID:         uuid.NewString(),
		Name:       cfg.Name,
		Version:    now.UTC().Format("20060102150405"),
		Algorithm:  cfg.Algorithm,
		Parameters: params,
		Metadata: core.ModelMetadata{
			TrainingHistory: run.history,
			Hyperparameters: hyperparameters(cfg),
			TrainingTime:    elapsed,
			TrainSamples:    run.data.Train.Len(),
			FeatureDim:      run.data.FeatureDim(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// withDefaults 填充配置默认值。
func withDefaults(cfg core.ModelConfig) core.ModelConfig {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = defaultLearningRate
	}
	if cfg.EarlyStoppingTolerance <= 0 {
		cfg.EarlyStoppingTolerance = defaultTolerance
	}
	if cfg.Algorithm == core.AlgorithmNeuralNetwork && len(cfg.HiddenLayers) == 0 {
		cfg.HiddenLayers = []int{defaultHiddenLayer}
	}
	return cfg
}

// hyperparameters 把生效的配置落成可记录的超参表。
func hyperparameters(cfg core.ModelConfig) map[string]float64 {
	out := map[string]float64{
		"max_iterations": float64(cfg.MaxIterations),
		"learning_rate":  cfg.LearningRate,
		"regularization": cfg.Regularization,
	}
	for k, v := range cfg.Hyperparameters {
		out[k] = v
	}
	return out
}
