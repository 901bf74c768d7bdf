package core

import "github.com/rushteam/matchkit/pkg/utils"

// MatchContext 承载一次匹配请求的上下文，贯穿整个 Pipeline 透传。
// 典型场景：为一个职位排序一批候选人（Job 固定、候选人为 items），
// 或为一个候选人排序一批职位（对称）。
type MatchContext struct {
	// UserID 发起请求的用户（A/B 分桶的主体）
	UserID string

	// Job 待匹配的职位画像（候选人侧排序时使用）
	Job *Profile

	// Candidate 待匹配的候选人画像（职位侧排序时使用）
	Candidate *Profile

	// Labels 请求级标签，可驱动整个 Pipeline 行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数（如 page, scene, realtime_* 等）
	Params map[string]any
}

// Target 返回本次请求固定的一侧画像（Job 优先）。
func (mctx *MatchContext) Target() *Profile {
	if mctx.Job != nil {
		return mctx.Job
	}
	return mctx.Candidate
}

// PutLabel 写入请求级 Label。
func (mctx *MatchContext) PutLabel(key string, lbl utils.Label) {
	if mctx.Labels == nil {
		mctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := mctx.Labels[key]; ok {
		mctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	mctx.Labels[key] = lbl
}

// MatchCandidate 是匹配链路中的统一承载结构：画像、特征、分数、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策。
type MatchCandidate struct {
	Profile    *Profile
	Score      float64
	Confidence float64
	Features   *FeatureVector
	Meta       map[string]any
	Labels     map[string]utils.Label
}

// NewMatchCandidate 包装一个画像为匹配候选。
func NewMatchCandidate(p *Profile) *MatchCandidate {
	return &MatchCandidate{
		Profile: p,
		Meta:    make(map[string]any),
		Labels:  make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (mc *MatchCandidate) PutLabel(key string, lbl utils.Label) {
	if mc.Labels == nil {
		mc.Labels = make(map[string]utils.Label)
	}
	if old, ok := mc.Labels[key]; ok {
		mc.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	mc.Labels[key] = lbl
}

// Prediction 是对一个 (candidate, job) 配对的打分结果。
type Prediction struct {
	Score      float64                `json:"score"`
	Confidence float64                `json:"confidence"`
	ModelID    string                 `json:"model_id"`
	Group      Group                  `json:"group,omitempty"` // 来自 A/B 路由时填充
	TestID     string                 `json:"test_id,omitempty"`
	Labels     map[string]utils.Label `json:"labels,omitempty"`
}
