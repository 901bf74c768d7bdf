package pipeline

import (
	"context"

	"github.com/rushteam/matchkit/core"
)

// Pipeline 是匹配核心的编排抽象：把匹配逻辑拆成可组合的 Node 链。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	mctx *core.MatchContext,
	candidates []*core.MatchCandidate,
) ([]*core.MatchCandidate, error) {
	cur := candidates
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, mctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
