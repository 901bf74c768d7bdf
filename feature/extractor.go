// Package feature 实现画像的特征抽取：把候选人/职位画像编码成定长特征向量，
// 并为(候选人, 职位)配对生成带交互与相似度块的配对向量。
//
// 抽取是无状态的，同一个 Extractor 可以被并发使用。
package feature

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// ActivitySource 提供画像的外部活跃度信号（如来自特征平台的近期行为统计）。
// 返回值应在 [0, 1] 区间；失败时抽取器回退到本地推算，不中断抽取。
type ActivitySource interface {
	ActivityScore(ctx context.Context, profileID string) (float64, error)
}

// Extractor 是特征抽取器。零值不可用，必须通过 NewExtractor 创建。
type Extractor struct {
	logger           *zap.Logger
	embedding        core.EmbeddingService
	embeddingTimeout time.Duration
	activity         ActivitySource
	withMetadata     bool
	renormalize      bool
	now              func() time.Time
}

// Option 配置 Extractor。
type Option func(*Extractor)

// WithLogger 注入日志器，默认不输出。
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// WithEmbedding 注入文本 Embedding 服务并启用配对向量的文本相似度块。
func WithEmbedding(svc core.EmbeddingService) Option {
	return func(e *Extractor) { e.embedding = svc }
}

// WithEmbeddingTimeout 设置单次 Embedding 调用的超时，默认 2s。
func WithEmbeddingTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.embeddingTimeout = d
		}
	}
}

// WithActivitySource 注入外部活跃度信号源（如 Feast 在线特征）。
func WithActivitySource(src ActivitySource) Option {
	return func(e *Extractor) { e.activity = src }
}

// WithoutMetadata 关闭元数据分类（画像向量不含 metadata 子区间）。
func WithoutMetadata() Option {
	return func(e *Extractor) { e.withMetadata = false }
}

// WithRenormalize 启用整体向量的 min-max 再归一化。
func WithRenormalize() Option {
	return func(e *Extractor) { e.renormalize = true }
}

// WithClock 注入时间源，用于测试中固定"现在"。
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExtractor 创建特征抽取器。
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		logger:           zap.NewNop(),
		embeddingTimeout: defaultEmbeddingTimeout,
		withMetadata:     true,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// ProfileDim 返回画像向量的维度（由当前配置决定，调用间不变）。
func (e *Extractor) ProfileDim() int {
	dim := widthSkills + widthExperience + widthEducation +
		widthLocation + widthSalary + widthPreferences
	if e.withMetadata {
		dim += widthMetadata
	}
	return dim
}

// PairDim 返回配对向量的维度。
func (e *Extractor) PairDim() int {
	profile := e.ProfileDim()
	dim := 2*profile + 3*profile + widthSimilarity
	if e.embedding != nil {
		dim += widthTextSimilarity
	}
	return dim
}

// ExtractProfile 抽取单个画像的特征向量。
//
// 抽取对残缺画像保持全函数：缺失的可选字段产生定宽全零子区间，
// 单个分类的内部异常被就地捕获、记日志并落成全零子区间，绝不向外传播。
// 只有 nil 画像会返回校验错误。
func (e *Extractor) ExtractProfile(ctx context.Context, p *core.Profile) (*core.FeatureVector, error) {
	if p == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation, "profile is nil")
	}

	now := e.now()
	b := newVecBuilder(e.ProfileDim())
	b.add(core.CategorySkills, e.safeCategory(p, core.CategorySkills, widthSkills,
		func() []float64 { return skillFeatures(p) }))
	b.add(core.CategoryExperience, e.safeCategory(p, core.CategoryExperience, widthExperience,
		func() []float64 { return experienceFeatures(p, now) }))
	b.add(core.CategoryEducation, e.safeCategory(p, core.CategoryEducation, widthEducation,
		func() []float64 { return educationFeatures(p) }))
	b.add(core.CategoryLocation, e.safeCategory(p, core.CategoryLocation, widthLocation,
		func() []float64 { return locationFeatures(p) }))
	b.add(core.CategorySalary, e.safeCategory(p, core.CategorySalary, widthSalary,
		func() []float64 { return salaryFeatures(p) }))
	b.add(core.CategoryPreferences, e.safeCategory(p, core.CategoryPreferences, widthPreferences,
		func() []float64 { return preferenceFeatures(p) }))
	if e.withMetadata {
		activity := e.activityScore(ctx, p)
		b.add(core.CategoryMetadata, e.safeCategory(p, core.CategoryMetadata, widthMetadata,
			func() []float64 { return metadataFeatures(p, now, activity) }))
	}

	vec := b.vector()
	if e.renormalize {
		Renormalize(vec.Values)
	}
	return vec, nil
}

// ExtractPair 抽取(候选人, 职位)配对的特征向量：
// 两个画像向量顺序拼接，再追加交互块、相似度块和可选的文本相似度块。
//
// 配对向量中画像分类出现两次（候选人侧在前），FeatureVector.Category
// 返回第一个命中的区间，即候选人侧。
func (e *Extractor) ExtractPair(ctx context.Context, candidate, job *core.Profile) (*core.FeatureVector, error) {
	if candidate == nil || job == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation, "candidate and job are required")
	}

	cvec, err := e.ExtractProfile(ctx, candidate)
	if err != nil {
		return nil, err
	}
	jvec, err := e.ExtractProfile(ctx, job)
	if err != nil {
		return nil, err
	}

	now := e.now()
	b := newVecBuilder(e.PairDim())
	b.addSpans(cvec)
	b.addSpans(jvec)
	b.add(core.CategoryInteraction, interactionFeatures(cvec.Values, jvec.Values))
	b.add(core.CategorySimilarity, e.safeCategory(candidate, core.CategorySimilarity, widthSimilarity,
		func() []float64 { return similarityFeatures(candidate, job, now) }))
	if e.embedding != nil {
		b.add(core.CategoryTextSimilarity, e.textSimilarityFeatures(ctx, candidate, job))
	}

	vec := b.vector()
	if e.renormalize {
		Renormalize(vec.Values)
	}
	return vec, nil
}

// safeCategory 执行单个分类的抽取并就地捕获 panic。
// 失败的分类记日志并落成定宽全零子向量，保持向量布局不变。
func (e *Extractor) safeCategory(p *core.Profile, cat core.FeatureCategory, width int, fn func() []float64) (out []float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("category extraction failed, zero-filling",
				zap.String("profile_id", p.ID),
				zap.String("category", string(cat)),
				zap.Any("panic", r))
			out = make([]float64, width)
		}
	}()
	out = fn()
	if len(out) != width {
		e.logger.Warn("category width mismatch, zero-filling",
			zap.String("profile_id", p.ID),
			zap.String("category", string(cat)),
			zap.Int("got", len(out)),
			zap.Int("want", width))
		return make([]float64, width)
	}
	return out
}

// activityScore 查询外部活跃度信号，未配置或失败时返回 -1（回退本地推算）。
func (e *Extractor) activityScore(ctx context.Context, p *core.Profile) float64 {
	if e.activity == nil {
		return -1
	}
	score, err := e.activity.ActivityScore(ctx, p.ID)
	if err != nil {
		e.logger.Debug("activity source unavailable, falling back",
			zap.String("profile_id", p.ID), zap.Error(err))
		return -1
	}
	return score
}

// vecBuilder 按分类顺序拼装定长向量并记录各分类的区间。
type vecBuilder struct {
	values []float64
	spans  []core.CategorySpan
}

func newVecBuilder(capacity int) *vecBuilder {
	return &vecBuilder{values: make([]float64, 0, capacity)}
}

func (b *vecBuilder) add(cat core.FeatureCategory, vals []float64) {
	b.spans = append(b.spans, core.CategorySpan{
		Category: cat,
		Offset:   len(b.values),
		Width:    len(vals),
	})
	b.values = append(b.values, vals...)
}

// addSpans 追加一个已抽取向量的全部内容，保留其分类区间（偏移平移）。
func (b *vecBuilder) addSpans(v *core.FeatureVector) {
	base := len(b.values)
	for _, s := range v.Spans {
		b.spans = append(b.spans, core.CategorySpan{
			Category: s.Category,
			Offset:   base + s.Offset,
			Width:    s.Width,
		})
	}
	b.values = append(b.values, v.Values...)
}

func (b *vecBuilder) vector() *core.FeatureVector {
	return &core.FeatureVector{Values: b.values, Spans: b.spans}
}
