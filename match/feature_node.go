// Package match 提供匹配 Pipeline 的内建 Node 与编排服务：
// 特征补全、硬性条件过滤、模型打分排序。
package match

import (
	"context"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// FeatureNode 为候选补全配对特征向量，供下游打分 Node 使用。
// - 写入 labels：pair_features
// - 已携带特征的候选跳过，不重复抽取
type FeatureNode struct {
	Extractor *feature.Extractor
}

func (n *FeatureNode) Name() string        { return "match.feature" }
func (n *FeatureNode) Kind() pipeline.Kind { return pipeline.KindFeature }

func (n *FeatureNode) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	candidates []*core.MatchCandidate,
) ([]*core.MatchCandidate, error) {
	if n.Extractor == nil || len(candidates) == 0 {
		return candidates, nil
	}

	for _, mc := range candidates {
		if mc == nil || mc.Profile == nil || mc.Features != nil {
			continue
		}
		candidate, job := orient(mctx, mc.Profile)
		vec, err := n.Extractor.ExtractPair(ctx, candidate, job)
		if err != nil {
			return nil, err
		}
		mc.Features = vec
		mc.PutLabel("pair_features", utils.Label{Value: "extracted", Source: "feature"})
	}
	return candidates, nil
}

// orient 根据请求固定的一侧确定 (candidate, job) 顺序。
// Job 固定时 items 是候选人；Candidate 固定时 items 是职位。
func orient(mctx *core.MatchContext, item *core.Profile) (candidate, job *core.Profile) {
	if mctx != nil && mctx.Candidate != nil && mctx.Job == nil {
		return mctx.Candidate, item
	}
	var j *core.Profile
	if mctx != nil {
		j = mctx.Job
	}
	return item, j
}
