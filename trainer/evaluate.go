package trainer

import (
	"math"
	"sort"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/model"
)

// Evaluate 计算预测值对标注的全套指标。
// 评估是纯函数：混淆矩阵按 0.5 阈值二值化，AUC 用秩和（Mann-Whitney）统计，
// 损失为对数损失。
func Evaluate(predictions, labels []float64) core.ModelMetrics {
	var m core.ModelMetrics
	n := len(predictions)
	if n == 0 || n != len(labels) {
		return m
	}

	for i := 0; i < n; i++ {
		positive := labels[i] >= 0.5
		predicted := predictions[i] >= 0.5
		switch {
		case positive && predicted:
			m.Confusion.TruePositive++
		case positive && !predicted:
			m.Confusion.FalseNegative++
		case !positive && predicted:
			m.Confusion.FalsePositive++
		default:
			m.Confusion.TrueNegative++
		}
	}

	tp := float64(m.Confusion.TruePositive)
	tn := float64(m.Confusion.TrueNegative)
	fp := float64(m.Confusion.FalsePositive)
	fn := float64(m.Confusion.FalseNegative)

	m.Accuracy = (tp + tn) / float64(n)
	if tp+fp > 0 {
		m.Precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		m.Recall = tp / (tp + fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	m.AUC = rankAUC(predictions, labels)
	m.Loss = logLoss(predictions, labels)
	return m
}

// rankAUC 秩和法计算 AUC，并列预测取平均秩。
// 全正或全负样本时返回 0.5（AUC 无定义，取中性值）。
func rankAUC(predictions, labels []float64) float64 {
	n := len(predictions)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		return predictions[idx[a]] < predictions[idx[b]]
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && predictions[idx[j]] == predictions[idx[i]] {
			j++
		}
		// [i, j) 为并列区间，取平均秩（秩从 1 开始）
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var positives, rankSum float64
	for i := 0; i < n; i++ {
		if labels[i] >= 0.5 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return 0.5
	}
	return (rankSum - positives*(positives+1)/2) / (positives * negatives)
}

// logLoss 对数损失，预测值钳位避免 log(0)。
func logLoss(predictions, labels []float64) float64 {
	const eps = 1e-15
	var sum float64
	for i := range predictions {
		p := math.Min(math.Max(predictions[i], eps), 1-eps)
		y := labels[i]
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(len(predictions))
}

// evaluateArtifact 用模型工件在标注集上评估。空集返回零值指标。
func evaluateArtifact(artifact *core.MLModel, set core.LabeledSet) (core.ModelMetrics, error) {
	if set.Len() == 0 {
		return core.ModelMetrics{}, nil
	}
	m, err := model.FromArtifact(artifact)
	if err != nil {
		return core.ModelMetrics{}, err
	}
	predictions := make([]float64, set.Len())
	for i, features := range set.Features {
		score, err := m.Predict(features)
		if err != nil {
			return core.ModelMetrics{}, err
		}
		predictions[i] = score
	}
	return Evaluate(predictions, set.Labels), nil
}
