// Package model 提供模型工件的运行时表示：从 core.MLModel 还原出可打分的
// RankModel。打分是纯函数，无隐藏状态，可以被任意并发调用。
package model

import (
	"fmt"
	"math"

	"github.com/rushteam/matchkit/core"
)

// RankModel 是可打分的模型。
// Predict 接收定长特征向量，返回 [0, 1] 区间的匹配分。
type RankModel interface {
	Name() string
	Predict(features []float64) (float64, error)
}

// Sigmoid 标准 logistic 函数。
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// dimError 特征维度不匹配的校验错误。
func dimError(got, want int) error {
	return core.NewDomainError(core.ModuleTrainer, core.ErrorCodeValidation,
		fmt.Sprintf("feature dimension mismatch: got %d, want %d", got, want))
}
