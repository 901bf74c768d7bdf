package abtest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/model"
	"github.com/rushteam/matchkit/pkg/dsl"
)

// defaultConfidenceLevel 默认置信水平。
const defaultConfidenceLevel = 0.95

// Framework 是 A/B 实验框架。
//
// 内存态是第一事实：实验、参与者与转化先在内存中完成，外部注册表的
// 持久化是尽力而为的（失败记日志，不阻塞在线请求）。
// 所有方法并发安全。
type Framework struct {
	logger      *zap.Logger
	now         func() time.Time
	rng         func() float64
	extractor   *feature.Extractor
	rules       *dsl.Eval
	models      core.ModelRegistry
	experiments core.ExperimentRegistry

	mu           sync.RWMutex
	tests        map[string]*core.ABTest
	participants map[string]map[string]*core.Participant
	conversions  map[string][]*core.Conversion

	modelMu    sync.RWMutex
	modelCache map[string]model.RankModel
}

// FrameworkOption 配置 Framework。
type FrameworkOption func(*Framework)

// WithLogger 注入日志器，默认不输出。
func WithLogger(logger *zap.Logger) FrameworkOption {
	return func(f *Framework) { f.logger = logger }
}

// WithModelRegistry 注入模型注册表（Predict 按模型 id 解析工件）。
func WithModelRegistry(r core.ModelRegistry) FrameworkOption {
	return func(f *Framework) { f.models = r }
}

// WithExperimentRegistry 注入实验注册表（实验记录的尽力而为持久化）。
func WithExperimentRegistry(r core.ExperimentRegistry) FrameworkOption {
	return func(f *Framework) { f.experiments = r }
}

// WithExtractor 注入特征抽取器，默认使用标准配置。
func WithExtractor(e *feature.Extractor) FrameworkOption {
	return func(f *Framework) { f.extractor = e }
}

// WithRNG 注入分桶随机源（返回 [0,1) 的均匀随机数），测试中可固定。
func WithRNG(rng func() float64) FrameworkOption {
	return func(f *Framework) {
		if rng != nil {
			f.rng = rng
		}
	}
}

// WithClock 注入时间源，用于测试。
func WithClock(now func() time.Time) FrameworkOption {
	return func(f *Framework) {
		if now != nil {
			f.now = now
		}
	}
}

// NewFramework 创建 A/B 实验框架。
func NewFramework(opts ...FrameworkOption) *Framework {
	f := &Framework{
		logger:       zap.NewNop(),
		now:          time.Now,
		rng:          rand.Float64,
		rules:        dsl.NewEval(),
		tests:        make(map[string]*core.ABTest),
		participants: make(map[string]map[string]*core.Participant),
		conversions:  make(map[string][]*core.Conversion),
		modelCache:   make(map[string]model.RankModel),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.extractor == nil {
		f.extractor = feature.NewExtractor()
	}
	return f
}

// CreateTest 创建实验（状态 created）。
// ID 为空时自动生成；TrafficSplit 必须在 [0, 1]；两侧模型 id 必填且不同。
func (f *Framework) CreateTest(ctx context.Context, test *core.ABTest) error {
	if test == nil {
		return validationErr("test is nil")
	}
	if test.ControlModelID == "" || test.TreatmentModelID == "" {
		return validationErr("control and treatment model ids are required")
	}
	if test.ControlModelID == test.TreatmentModelID {
		return validationErr("control and treatment must reference different models")
	}
	if test.TrafficSplit < 0 || test.TrafficSplit > 1 {
		return validationErr(fmt.Sprintf("traffic split %v out of [0, 1]", test.TrafficSplit))
	}
	if test.Config.ConfidenceLevel == 0 {
		test.Config.ConfidenceLevel = defaultConfidenceLevel
	}
	if test.Config.ConfidenceLevel <= 0.5 || test.Config.ConfidenceLevel >= 1 {
		return validationErr(fmt.Sprintf("confidence level %v out of (0.5, 1)", test.Config.ConfidenceLevel))
	}
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	test.Status = core.TestStatusCreated
	test.CreatedAt = f.now()

	f.mu.Lock()
	if _, exists := f.tests[test.ID]; exists {
		f.mu.Unlock()
		return validationErr("test id already exists: " + test.ID)
	}
	f.tests[test.ID] = test
	f.participants[test.ID] = make(map[string]*core.Participant)
	f.mu.Unlock()

	f.persistTest(ctx, test, false)
	f.logger.Info("ab test created",
		zap.String("test_id", test.ID),
		zap.String("name", test.Name),
		zap.Float64("traffic_split", test.TrafficSplit))
	return nil
}

// StartTest 启动实验：created → running，StartedAt 只设置一次。
func (f *Framework) StartTest(ctx context.Context, testID string) error {
	f.mu.Lock()
	test, ok := f.tests[testID]
	if !ok {
		f.mu.Unlock()
		return core.ErrTestNotFound
	}
	if test.Status != core.TestStatusCreated {
		f.mu.Unlock()
		return stateErr(fmt.Sprintf("cannot start test in status %q", test.Status))
	}
	test.Status = core.TestStatusRunning
	started := f.now()
	test.StartedAt = &started
	f.mu.Unlock()

	f.persistTest(ctx, test, true)
	f.logger.Info("ab test started", zap.String("test_id", testID))
	return nil
}

// StopTest 停止实验：running → stopped，EndedAt 只设置一次。
func (f *Framework) StopTest(ctx context.Context, testID, reason string) error {
	f.mu.Lock()
	test, ok := f.tests[testID]
	if !ok {
		f.mu.Unlock()
		return core.ErrTestNotFound
	}
	if test.Status != core.TestStatusRunning {
		f.mu.Unlock()
		return stateErr(fmt.Sprintf("cannot stop test in status %q", test.Status))
	}
	test.Status = core.TestStatusStopped
	ended := f.now()
	test.EndedAt = &ended
	test.StopReason = reason
	f.mu.Unlock()

	f.persistTest(ctx, test, true)
	f.logger.Info("ab test stopped", zap.String("test_id", testID), zap.String("reason", reason))
	return nil
}

// GetTest 返回实验（内存态快照指针，调用方只读）。
func (f *Framework) GetTest(_ context.Context, testID string) (*core.ABTest, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	test, ok := f.tests[testID]
	if !ok {
		return nil, core.ErrTestNotFound
	}
	return test, nil
}

// RunningTests 返回全部进行中实验的 id。
func (f *Framework) RunningTests() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.tests))
	for id, t := range f.tests {
		if t.Status == core.TestStatusRunning {
			out = append(out, id)
		}
	}
	return out
}

// Predict 对一个 (candidate, job) 配对实时打分，按实验路由模型。
//
// 流程：受众判定 → 粘性分桶 → 特征抽取 → 分组模型打分。
// 受众之外的用户不参与实验，用 control 模型打分且不写入参与者记录。
func (f *Framework) Predict(ctx context.Context, testID, userID string, candidate, job *core.Profile) (*core.Prediction, error) {
	f.mu.RLock()
	test, ok := f.tests[testID]
	var status core.TestStatus
	if ok {
		status = test.Status
	}
	f.mu.RUnlock()
	if !ok {
		return nil, core.ErrTestNotFound
	}
	if status != core.TestStatusRunning {
		return nil, stateErr(fmt.Sprintf("test %q is not running", testID))
	}

	eligible, err := f.inAudience(test, userID, candidate, job)
	if err != nil {
		f.logger.Warn("audience rule failed, treating user as excluded",
			zap.String("test_id", testID), zap.Error(err))
		eligible = false
	}

	var group core.Group
	var enrolled bool
	if eligible {
		group, err = f.assign(ctx, test, userID)
		if err != nil {
			return nil, err
		}
		enrolled = true
	} else {
		group = core.GroupControl
	}

	modelID := test.ControlModelID
	if group == core.GroupTreatment {
		modelID = test.TreatmentModelID
	}
	rm, err := f.resolveModel(ctx, modelID)
	if err != nil {
		return nil, err
	}

	vec, err := f.extractor.ExtractPair(ctx, candidate, job)
	if err != nil {
		return nil, err
	}
	score, err := rm.Predict(vec.Values)
	if err != nil {
		return nil, err
	}

	pred := &core.Prediction{
		Score:      score,
		Confidence: math.Abs(score-0.5) * 2,
		ModelID:    modelID,
	}
	if enrolled {
		pred.Group = group
		pred.TestID = testID
	}
	return pred, nil
}

// RecordConversion 记录一次转化。参与者必须已被分组，
// 转化归因到其分组（入参不携带分组，防止错归因）。
func (f *Framework) RecordConversion(ctx context.Context, testID, userID, convType string, value float64) error {
	f.mu.Lock()
	test, ok := f.tests[testID]
	if !ok {
		f.mu.Unlock()
		return core.ErrTestNotFound
	}
	if test.Status == core.TestStatusCreated {
		f.mu.Unlock()
		return stateErr("test has not started")
	}
	participant, ok := f.participants[testID][userID]
	if !ok {
		f.mu.Unlock()
		return core.ErrParticipantNotFound
	}

	conv := &core.Conversion{
		TestID: testID,
		UserID: userID,
		Group:  participant.Group,
		Type:   convType,
		Value:  value,
		At:     f.now(),
	}
	f.conversions[testID] = append(f.conversions[testID], conv)
	f.mu.Unlock()

	if f.experiments != nil {
		if err := f.experiments.SaveConversion(ctx, conv); err != nil {
			f.logger.Error("conversion persistence failed, kept in memory",
				zap.String("test_id", testID), zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// GetTestResults 统计评估实验当前数据。
// 评估是幂等的纯统计：没有新数据时重复调用产生相同结论。
func (f *Framework) GetTestResults(_ context.Context, testID string) (*core.TestResults, error) {
	f.mu.RLock()
	test, ok := f.tests[testID]
	if !ok {
		f.mu.RUnlock()
		return nil, core.ErrTestNotFound
	}
	participants := make([]*core.Participant, 0, len(f.participants[testID]))
	for _, p := range f.participants[testID] {
		participants = append(participants, p)
	}
	conversions := append([]*core.Conversion{}, f.conversions[testID]...)
	status := test.Status
	cfg := test.Config
	f.mu.RUnlock()

	control := groupStats(participants, conversions, core.GroupControl)
	treatment := groupStats(participants, conversions, core.GroupTreatment)
	z, p := twoProportionTest(control, treatment)
	lo, hi := confidenceInterval(control, treatment, cfg.ConfidenceLevel)

	results := &core.TestResults{
		TestID:         testID,
		Status:         status,
		Control:        control,
		Treatment:      treatment,
		RateDifference: treatment.Rate - control.Rate,
		ZScore:         z,
		PValue:         p,
		Significant:    p < 1-cfg.ConfidenceLevel,
		ConfidenceLow:  lo,
		ConfidenceHigh: hi,
		MinSampleSizeMet: control.Participants >= int64(cfg.MinSampleSize) &&
			treatment.Participants >= int64(cfg.MinSampleSize),
		RecommendedWinner: core.WinnerInconclusive,
		EvaluatedAt:       f.now(),
	}
	results.WinnerConfidence = 1 - p

	if results.Significant && results.MinSampleSizeMet {
		if results.RateDifference > 0 {
			results.RecommendedWinner = core.WinnerTreatment
		} else if results.RateDifference < 0 {
			results.RecommendedWinner = core.WinnerControl
		}
	}
	return results, nil
}

// inAudience 判定用户是否命中实验受众。空表达式为全量。
func (f *Framework) inAudience(test *core.ABTest, userID string, candidate, job *core.Profile) (bool, error) {
	if test.Audience == "" {
		return true, nil
	}
	mctx := &core.MatchContext{UserID: userID, Job: job, Candidate: candidate}
	return f.rules.Evaluate(test.Audience, mctx, candidate)
}

// resolveModel 解析模型工件为可打分模型（带缓存）。
func (f *Framework) resolveModel(ctx context.Context, modelID string) (model.RankModel, error) {
	f.modelMu.RLock()
	rm, ok := f.modelCache[modelID]
	f.modelMu.RUnlock()
	if ok {
		return rm, nil
	}

	if f.models == nil {
		return nil, core.NewDomainError(core.ModuleABTest, core.ErrorCodeUnavailable,
			"no model registry configured")
	}
	artifact, err := f.models.LoadModel(ctx, modelID)
	if err != nil {
		return nil, err
	}
	rm, err = model.FromArtifact(artifact)
	if err != nil {
		return nil, err
	}

	f.modelMu.Lock()
	f.modelCache[modelID] = rm
	f.modelMu.Unlock()
	return rm, nil
}

// RegisterModel 直接注册一个模型工件（跳过注册表解析）。
func (f *Framework) RegisterModel(m *core.MLModel) error {
	rm, err := model.FromArtifact(m)
	if err != nil {
		return err
	}
	f.modelMu.Lock()
	f.modelCache[m.ID] = rm
	f.modelMu.Unlock()
	return nil
}

// persistTest 尽力而为地持久化实验记录，失败只记日志。
func (f *Framework) persistTest(ctx context.Context, test *core.ABTest, update bool) {
	if f.experiments == nil {
		return
	}
	var err error
	if update {
		err = f.experiments.UpdateTest(ctx, test)
	} else {
		err = f.experiments.SaveTest(ctx, test)
	}
	if err != nil {
		f.logger.Error("test persistence failed, kept in memory",
			zap.String("test_id", test.ID), zap.Error(err))
	}
}

func validationErr(msg string) error {
	return core.NewDomainError(core.ModuleABTest, core.ErrorCodeValidation, msg)
}

func stateErr(msg string) error {
	return core.NewDomainError(core.ModuleABTest, core.ErrorCodeInvalidState, msg)
}
