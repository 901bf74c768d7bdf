package model

import (
	"fmt"

	"github.com/rushteam/matchkit/core"
)

// FromArtifact 从持久化的模型工件还原出可打分的 RankModel。
// 算法枚举之外的取值返回校验错误，绝不静默回退到某个默认算法。
func FromArtifact(m *core.MLModel) (RankModel, error) {
	if m == nil {
		return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeValidation, "model artifact is nil")
	}

	name := m.Name
	if name == "" {
		name = m.ID
	}

	switch m.Algorithm {
	case core.AlgorithmLogisticRegression, core.AlgorithmSVM:
		return NewLinearModel(name, m.Parameters.Bias, m.Parameters.Weights), nil
	case core.AlgorithmRandomForest:
		return NewAveragingEnsemble(name, m.Parameters.Stumps, m.Metadata.FeatureDim), nil
	case core.AlgorithmGradientBoosting, core.AlgorithmXGBoost:
		return NewAdditiveEnsemble(name, m.Parameters.Stumps, m.Metadata.FeatureDim), nil
	case core.AlgorithmNeuralNetwork:
		return NewMLP(name, m.Parameters.Layers, m.Parameters.LayerWeights, m.Parameters.LayerBiases), nil
	default:
		return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeNotSupported,
			fmt.Sprintf("unsupported algorithm: %s", m.Algorithm))
	}
}
