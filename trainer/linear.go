package trainer

import (
	"math"
	"math/rand"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/model"
)

// fitLogistic 随机梯度下降拟合逻辑回归。
// 每个 epoch 结束在验证集上计算对数损失，驱动进度事件与早停。
func fitLogistic(run *trainRun) (core.ModelParameters, error) {
	data := run.data
	dim := data.FeatureDim()
	weights := make([]float64, dim)
	bias := 0.0
	lr := run.cfg.LearningRate
	reg := run.cfg.Regularization
	rng := rand.New(rand.NewSource(run.cfg.Seed))
	order := sampleOrder(data.Train.Len())

	for epoch := 0; epoch < run.cfg.MaxIterations; epoch++ {
		shuffle(rng, order)
		for _, i := range order {
			x := data.Train.Features[i]
			y := data.Train.Labels[i]
			p := model.Sigmoid(bias + dot(weights, x))
			g := p - y
			for j := range weights {
				weights[j] -= lr * (g*x[j] + reg*weights[j])
			}
			bias -= lr * g
		}

		valLoss := logisticLoss(weights, bias, data.Validation)
		stop, err := run.tick(epoch, valLoss)
		if err != nil {
			return core.ModelParameters{}, err
		}
		if stop {
			break
		}
	}

	return core.ModelParameters{
		Bias:              bias,
		Weights:           weights,
		FeatureImportance: importanceFromWeights(weights),
	}, nil
}

// fitSVM 随机梯度下降拟合线性 SVM（合页损失 + L2 正则）。
func fitSVM(run *trainRun) (core.ModelParameters, error) {
	data := run.data
	dim := data.FeatureDim()
	weights := make([]float64, dim)
	bias := 0.0
	lr := run.cfg.LearningRate
	reg := run.cfg.Regularization
	if reg <= 0 {
		reg = 1e-3
	}
	rng := rand.New(rand.NewSource(run.cfg.Seed))
	order := sampleOrder(data.Train.Len())

	for epoch := 0; epoch < run.cfg.MaxIterations; epoch++ {
		shuffle(rng, order)
		for _, i := range order {
			x := data.Train.Features[i]
			y := signLabel(data.Train.Labels[i])
			margin := y * (bias + dot(weights, x))
			if margin < 1 {
				for j := range weights {
					weights[j] -= lr * (reg*weights[j] - y*x[j])
				}
				bias += lr * y
			} else {
				for j := range weights {
					weights[j] -= lr * reg * weights[j]
				}
			}
		}

		valLoss := hingeLoss(weights, bias, data.Validation)
		stop, err := run.tick(epoch, valLoss)
		if err != nil {
			return core.ModelParameters{}, err
		}
		if stop {
			break
		}
	}

	return core.ModelParameters{
		Bias:              bias,
		Weights:           weights,
		FeatureImportance: importanceFromWeights(weights),
	}, nil
}

// logisticLoss 当前参数在标注集上的对数损失。
func logisticLoss(weights []float64, bias float64, set core.LabeledSet) float64 {
	if set.Len() == 0 {
		return 0
	}
	const eps = 1e-15
	var sum float64
	for i, x := range set.Features {
		p := model.Sigmoid(bias + dot(weights, x))
		p = math.Min(math.Max(p, eps), 1-eps)
		y := set.Labels[i]
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(set.Len())
}

// hingeLoss 当前参数在标注集上的平均合页损失。
func hingeLoss(weights []float64, bias float64, set core.LabeledSet) float64 {
	if set.Len() == 0 {
		return 0
	}
	var sum float64
	for i, x := range set.Features {
		y := signLabel(set.Labels[i])
		margin := y * (bias + dot(weights, x))
		if margin < 1 {
			sum += 1 - margin
		}
	}
	return sum / float64(set.Len())
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// signLabel 把 {0,1} 标注映射到 {-1,+1}。
func signLabel(y float64) float64 {
	if y >= 0.5 {
		return 1
	}
	return -1
}

func sampleOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func shuffle(rng *rand.Rand, order []int) {
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
}

// importanceFromWeights 以权重绝对值归一化为特征重要度。
func importanceFromWeights(weights []float64) []float64 {
	out := make([]float64, len(weights))
	var total float64
	for _, w := range weights {
		total += math.Abs(w)
	}
	if total == 0 {
		return out
	}
	for i, w := range weights {
		out[i] = math.Abs(w) / total
	}
	return out
}
