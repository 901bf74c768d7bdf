package match

import (
	"context"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/pipeline"
	"github.com/rushteam/matchkit/pkg/dsl"
	"github.com/rushteam/matchkit/pkg/utils"
)

// EligibilityNode 按 CEL 规则过滤硬性条件不满足的候选。
// 规则之间是 AND 关系：全部通过才保留。
// - 写入 labels：eligibility（保留的候选）
type EligibilityNode struct {
	// Rules CEL 表达式列表，如 `"go" in candidate.skills`
	Rules []string

	// Eval 规则解释器，nil 时懒初始化
	Eval *dsl.Eval
}

func (n *EligibilityNode) Name() string        { return "match.eligibility" }
func (n *EligibilityNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *EligibilityNode) Process(
	_ context.Context,
	mctx *core.MatchContext,
	candidates []*core.MatchCandidate,
) ([]*core.MatchCandidate, error) {
	if len(n.Rules) == 0 || len(candidates) == 0 {
		return candidates, nil
	}
	if n.Eval == nil {
		n.Eval = dsl.NewEval()
	}

	kept := make([]*core.MatchCandidate, 0, len(candidates))
	for _, mc := range candidates {
		if mc == nil || mc.Profile == nil {
			continue
		}
		pass := true
		for _, rule := range n.Rules {
			ok, err := n.Eval.Evaluate(rule, mctx, mc.Profile)
			if err != nil {
				return nil, err
			}
			if !ok {
				pass = false
				break
			}
		}
		if pass {
			mc.PutLabel("eligibility", utils.Label{Value: "passed", Source: "filter"})
			kept = append(kept, mc)
		}
	}
	return kept, nil
}
