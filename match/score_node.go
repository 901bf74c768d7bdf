package match

import (
	"context"
	"sort"

	"github.com/rushteam/matchkit/abtest"
	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/model"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/utils"
)

// ScoreNode 对候选打分并按分数降序排序。
//
// 两种打分路径：
//   - 配置了 AB + TestID 时走实验路由：每个候选经 A/B 框架打分，
//     分组与模型信息写入 labels
//   - 否则直接用 Model 对已抽取的特征打分
//
// - 写入 labels：score_model，ab_group（实验路由时）
// - 更新 candidate.Score / Confidence 并按分数降序稳定排序
type ScoreNode struct {
	Model model.RankModel

	AB     *abtest.Framework
	TestID string
}

func (n *ScoreNode) Name() string        { return "match.score" }
func (n *ScoreNode) Kind() pipeline.Kind { return pipeline.KindScore }

func (n *ScoreNode) Process(
	ctx context.Context,
	mctx *core.MatchContext,
	candidates []*core.MatchCandidate,
) ([]*core.MatchCandidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	switch {
	case n.AB != nil && n.TestID != "":
		if err := n.scoreViaExperiment(ctx, mctx, candidates); err != nil {
			return nil, err
		}
	case n.Model != nil:
		if err := n.scoreViaModel(candidates); err != nil {
			return nil, err
		}
	default:
		return candidates, nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i] == nil {
			return false
		}
		if candidates[j] == nil {
			return true
		}
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

func (n *ScoreNode) scoreViaExperiment(ctx context.Context, mctx *core.MatchContext, candidates []*core.MatchCandidate) error {
	var userID string
	if mctx != nil {
		userID = mctx.UserID
	}
	for _, mc := range candidates {
		if mc == nil || mc.Profile == nil {
			continue
		}
		candidate, job := orient(mctx, mc.Profile)
		pred, err := n.AB.Predict(ctx, n.TestID, userID, candidate, job)
		if err != nil {
			return err
		}
		mc.Score = pred.Score
		mc.Confidence = pred.Confidence
		mc.PutLabel("score_model", utils.Label{Value: pred.ModelID, Source: "score"})
		if pred.Group != "" {
			mc.PutLabel("ab_group", utils.Label{Value: string(pred.Group), Source: "abtest"})
		}
	}
	return nil
}

func (n *ScoreNode) scoreViaModel(candidates []*core.MatchCandidate) error {
	for _, mc := range candidates {
		if mc == nil || mc.Profile == nil {
			continue
		}
		if mc.Features == nil {
			return core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation,
				"candidate has no features, add a feature node before scoring")
		}
		score, err := n.Model.Predict(mc.Features.Values)
		if err != nil {
			return err
		}
		mc.Score = score
		mc.PutLabel("score_model", utils.Label{Value: n.Model.Name(), Source: "score"})
	}
	return nil
}
