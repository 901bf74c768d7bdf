package trainer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/model"
)

// maxThresholdCandidates 每个特征尝试的阈值候选数上限。
const maxThresholdCandidates = 8

// fitRandomForest 拟合随机森林：每轮在自举样本与随机特征子集上
// 训练一个决策桩，输出按等权平均。
func fitRandomForest(run *trainRun) (core.ModelParameters, error) {
	data := run.data
	dim := data.FeatureDim()
	n := data.Train.Len()
	rng := rand.New(rand.NewSource(run.cfg.Seed))

	stumps := make([]core.DecisionStump, 0, run.cfg.MaxIterations)
	// 验证集预测的运行累加，避免每轮全量重算
	valSum := make([]float64, data.Validation.Len())

	for iter := 0; iter < run.cfg.MaxIterations; iter++ {
		// 自举采样
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}

		stump := bestStump(data.Train, sample, randomFeatures(rng, dim), data.Train.Labels, 0)
		stump.Weight = 1
		stumps = append(stumps, stump)

		for i, x := range data.Validation.Features {
			valSum[i] += stumpOutput(stump, x)
		}
		valLoss := averagedLoss(valSum, data.Validation.Labels, len(stumps))

		stop, err := run.tick(iter, valLoss)
		if err != nil {
			return core.ModelParameters{}, err
		}
		if stop {
			break
		}
	}

	return core.ModelParameters{
		Stumps:            stumps,
		FeatureImportance: importanceFromStumps(stumps, dim),
	}, nil
}

// fitBoosting 拟合梯度提升：每轮对逻辑损失的梯度残差拟合一个决策桩，
// 以学习率收缩后累加。xgboost 风格在叶子值上加 L2 正则。
func fitBoosting(run *trainRun, regularized bool) (core.ModelParameters, error) {
	data := run.data
	dim := data.FeatureDim()
	n := data.Train.Len()
	rng := rand.New(rand.NewSource(run.cfg.Seed))
	lambda := 0.0
	if regularized {
		lambda = run.cfg.Regularization
		if lambda <= 0 {
			lambda = 1
		}
	}

	stumps := make([]core.DecisionStump, 0, run.cfg.MaxIterations)
	// 训练集与验证集的加性打分（logit 空间）
	scores := make([]float64, n)
	valScores := make([]float64, data.Validation.Len())

	all := sampleOrder(n)
	residuals := make([]float64, n)

	for iter := 0; iter < run.cfg.MaxIterations; iter++ {
		for i := range residuals {
			residuals[i] = data.Train.Labels[i] - model.Sigmoid(scores[i])
		}

		stump := bestStump(data.Train, all, randomFeatures(rng, dim), residuals, lambda)
		stump.Weight = run.cfg.LearningRate
		stumps = append(stumps, stump)

		for i, x := range data.Train.Features {
			scores[i] += stump.Weight * stumpOutput(stump, x)
		}
		for i, x := range data.Validation.Features {
			valScores[i] += stump.Weight * stumpOutput(stump, x)
		}
		valLoss := logitLoss(valScores, data.Validation.Labels)

		stop, err := run.tick(iter, valLoss)
		if err != nil {
			return core.ModelParameters{}, err
		}
		if stop {
			break
		}
	}

	return core.ModelParameters{
		Stumps:            stumps,
		FeatureImportance: importanceFromStumps(stumps, dim),
	}, nil
}

// bestStump 在给定样本与候选特征上搜索最优决策桩：
// 逐特征尝试阈值候选，选择平方误差最小的切分。
// lambda > 0 时叶子值做 L2 收缩（sum / (count + lambda)）。
func bestStump(set core.LabeledSet, sample []int, features []int, targets []float64, lambda float64) core.DecisionStump {
	best := core.DecisionStump{Feature: 0, Threshold: 0}
	bestErr := math.Inf(1)

	for _, f := range features {
		for _, threshold := range thresholdCandidates(set, sample, f) {
			var leftSum, rightSum float64
			var leftN, rightN int
			for _, i := range sample {
				if set.Features[i][f] <= threshold {
					leftSum += targets[i]
					leftN++
				} else {
					rightSum += targets[i]
					rightN++
				}
			}
			left := leafValue(leftSum, leftN, lambda)
			right := leafValue(rightSum, rightN, lambda)

			var sse float64
			for _, i := range sample {
				out := right
				if set.Features[i][f] <= threshold {
					out = left
				}
				d := targets[i] - out
				sse += d * d
			}
			if sse < bestErr {
				bestErr = sse
				best = core.DecisionStump{Feature: f, Threshold: threshold, Left: left, Right: right}
			}
		}
	}
	return best
}

// thresholdCandidates 取样本中该特征的去重分位点作为阈值候选。
func thresholdCandidates(set core.LabeledSet, sample []int, feature int) []float64 {
	values := make([]float64, 0, len(sample))
	for _, i := range sample {
		values = append(values, set.Features[i][feature])
	}
	sort.Float64s(values)

	out := make([]float64, 0, maxThresholdCandidates)
	step := len(values) / maxThresholdCandidates
	if step < 1 {
		step = 1
	}
	var last float64
	for i := 0; i < len(values); i += step {
		if len(out) > 0 && values[i] == last {
			continue
		}
		out = append(out, values[i])
		last = values[i]
	}
	return out
}

func leafValue(sum float64, count int, lambda float64) float64 {
	if count == 0 {
		return 0
	}
	return sum / (float64(count) + lambda)
}

func stumpOutput(s core.DecisionStump, x []float64) float64 {
	if x[s.Feature] <= s.Threshold {
		return s.Left
	}
	return s.Right
}

// randomFeatures 随机取 sqrt(dim) 个特征下标（至少 1 个）。
func randomFeatures(rng *rand.Rand, dim int) []int {
	k := int(math.Sqrt(float64(dim)))
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(dim)
	return perm[:k]
}

// averagedLoss 平均组合（随机森林）的验证损失。
func averagedLoss(sums, labels []float64, count int) float64 {
	if len(sums) == 0 || count == 0 {
		return 0
	}
	const eps = 1e-15
	var total float64
	for i, s := range sums {
		p := s / float64(count)
		p = math.Min(math.Max(p, eps), 1-eps)
		y := labels[i]
		total += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return total / float64(len(sums))
}

// logitLoss 加性打分（logit 空间）的对数损失。
func logitLoss(scores, labels []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	const eps = 1e-15
	var total float64
	for i, z := range scores {
		p := model.Sigmoid(z)
		p = math.Min(math.Max(p, eps), 1-eps)
		y := labels[i]
		total += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return total / float64(len(scores))
}

// importanceFromStumps 按决策桩使用频次（权重加权）统计特征重要度。
func importanceFromStumps(stumps []core.DecisionStump, dim int) []float64 {
	out := make([]float64, dim)
	var total float64
	for _, s := range stumps {
		w := math.Abs(s.Weight)
		if w == 0 {
			w = 1
		}
		out[s.Feature] += w
		total += w
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
