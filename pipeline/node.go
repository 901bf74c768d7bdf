package pipeline

import (
	"context"

	"github.com/rushteam/matchkit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindFeature     Kind = "feature"     // 特征阶段：为候选补充特征向量
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不符合硬性约束的候选
	KindScore       Kind = "score"       // 打分阶段：对候选打分并排序
	KindPostProcess Kind = "postprocess" // 后处理阶段：结果修饰与截断
)

// Node 是匹配 Pipeline 的最小可扩展单元。
// 统一采用"输入 candidates -> 输出 candidates"的形态，
// 方便 Filter 截断、Score 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		mctx *core.MatchContext,
		candidates []*core.MatchCandidate,
	) ([]*core.MatchCandidate, error)
}
