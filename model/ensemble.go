package model

import "github.com/rushteam/matchkit/core"

// StumpEnsemble 是树族模型（random_forest / gradient_boosting / xgboost）
// 的打分实现：一组单特征单阈值的决策桩。
//
// 两种组合方式：
//   - 平均（random_forest）：各桩输出概率，按权重加权平均
//   - 加和（gradient_boosting / xgboost）：各桩输出加性打分，最终过 sigmoid
type StumpEnsemble struct {
	name     string
	stumps   []core.DecisionStump
	dim      int
	additive bool
}

// NewAveragingEnsemble 创建平均组合的桩集成（随机森林）。
func NewAveragingEnsemble(name string, stumps []core.DecisionStump, dim int) *StumpEnsemble {
	return &StumpEnsemble{name: name, stumps: stumps, dim: dim, additive: false}
}

// NewAdditiveEnsemble 创建加和组合的桩集成（梯度提升族）。
func NewAdditiveEnsemble(name string, stumps []core.DecisionStump, dim int) *StumpEnsemble {
	return &StumpEnsemble{name: name, stumps: stumps, dim: dim, additive: true}
}

// Name 返回模型名。
func (m *StumpEnsemble) Name() string { return m.name }

// Predict 按组合方式聚合全部决策桩的输出。
func (m *StumpEnsemble) Predict(features []float64) (float64, error) {
	if len(features) != m.dim {
		return 0, dimError(len(features), m.dim)
	}
	if len(m.stumps) == 0 {
		return 0.5, nil
	}

	var sum, weight float64
	for _, s := range m.stumps {
		out := s.Right
		if features[s.Feature] <= s.Threshold {
			out = s.Left
		}
		sum += s.Weight * out
		weight += s.Weight
	}

	if m.additive {
		return Sigmoid(sum), nil
	}
	if weight == 0 {
		return 0.5, nil
	}
	return clamp01(sum / weight), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
