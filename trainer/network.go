package trainer

import (
	"math"
	"math/rand"

	"github.com/rushteam/matchkit/core"
	"github.com/rushteam/matchkit/model"
)

// fitNetwork 反向传播拟合多层感知机：隐层 ReLU，输出层 sigmoid + 对数损失。
func fitNetwork(run *trainRun) (core.ModelParameters, error) {
	data := run.data
	dim := data.FeatureDim()
	rng := rand.New(rand.NewSource(run.cfg.Seed))

	layers := append([]int{dim}, run.cfg.HiddenLayers...)
	layers = append(layers, 1)
	weights, biases := initNetwork(rng, layers)

	lr := run.cfg.LearningRate
	order := sampleOrder(data.Train.Len())

	for epoch := 0; epoch < run.cfg.MaxIterations; epoch++ {
		shuffle(rng, order)
		for _, i := range order {
			backpropagate(weights, biases, data.Train.Features[i], data.Train.Labels[i], lr)
		}

		valLoss := networkLoss(weights, biases, data.Validation)
		stop, err := run.tick(epoch, valLoss)
		if err != nil {
			return core.ModelParameters{}, err
		}
		if stop {
			break
		}
	}

	return core.ModelParameters{
		Layers:            layers,
		LayerWeights:      weights,
		LayerBiases:       biases,
		FeatureImportance: importanceFromNetwork(weights, dim),
	}, nil
}

// initNetwork Xavier 风格的小随机数初始化。
func initNetwork(rng *rand.Rand, layers []int) ([][][]float64, [][]float64) {
	weights := make([][][]float64, len(layers)-1)
	biases := make([][]float64, len(layers)-1)
	for l := 0; l < len(layers)-1; l++ {
		in, out := layers[l], layers[l+1]
		scale := math.Sqrt(2 / float64(in))
		weights[l] = make([][]float64, out)
		biases[l] = make([]float64, out)
		for j := 0; j < out; j++ {
			weights[l][j] = make([]float64, in)
			for k := 0; k < in; k++ {
				weights[l][j][k] = rng.NormFloat64() * scale
			}
		}
	}
	return weights, biases
}

// backpropagate 单样本前向 + 反向传播，就地更新参数。
func backpropagate(weights [][][]float64, biases [][]float64, x []float64, y, lr float64) {
	depth := len(weights)
	// 前向：保留各层激活
	activations := make([][]float64, depth+1)
	activations[0] = x
	for l := 0; l < depth; l++ {
		out := make([]float64, len(weights[l]))
		last := l == depth-1
		for j, neuron := range weights[l] {
			z := biases[l][j]
			for k, w := range neuron {
				z += w * activations[l][k]
			}
			if last {
				out[j] = model.Sigmoid(z)
			} else if z > 0 {
				out[j] = z
			}
		}
		activations[l+1] = out
	}

	// 反向：sigmoid + 对数损失的输出层 delta 是 (p - y)
	deltas := make([][]float64, depth)
	deltas[depth-1] = []float64{activations[depth][0] - y}
	for l := depth - 2; l >= 0; l-- {
		deltas[l] = make([]float64, len(weights[l]))
		for j := range weights[l] {
			if activations[l+1][j] <= 0 { // ReLU 死区无梯度
				continue
			}
			var sum float64
			for m, neuron := range weights[l+1] {
				sum += neuron[j] * deltas[l+1][m]
			}
			deltas[l][j] = sum
		}
	}

	for l := 0; l < depth; l++ {
		for j, neuron := range weights[l] {
			d := deltas[l][j]
			if d == 0 {
				continue
			}
			for k := range neuron {
				neuron[k] -= lr * d * activations[l][k]
			}
			biases[l][j] -= lr * d
		}
	}
}

// networkLoss 当前网络在标注集上的对数损失。
func networkLoss(weights [][][]float64, biases [][]float64, set core.LabeledSet) float64 {
	if set.Len() == 0 {
		return 0
	}
	const eps = 1e-15
	var sum float64
	for i, x := range set.Features {
		p := forward(weights, biases, x)
		p = math.Min(math.Max(p, eps), 1-eps)
		y := set.Labels[i]
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
	}
	return sum / float64(set.Len())
}

// forward 纯前向传播（评估用）。
func forward(weights [][][]float64, biases [][]float64, x []float64) float64 {
	activation := x
	for l := 0; l < len(weights); l++ {
		out := make([]float64, len(weights[l]))
		last := l == len(weights)-1
		for j, neuron := range weights[l] {
			z := biases[l][j]
			for k, w := range neuron {
				z += w * activation[k]
			}
			if last {
				out[j] = model.Sigmoid(z)
			} else if z > 0 {
				out[j] = z
			}
		}
		activation = out
	}
	return activation[0]
}

// importanceFromNetwork 以第一层权重的绝对值列和作为特征重要度。
func importanceFromNetwork(weights [][][]float64, dim int) []float64 {
	out := make([]float64, dim)
	if len(weights) == 0 {
		return out
	}
	var total float64
	for _, neuron := range weights[0] {
		for k, w := range neuron {
			out[k] += math.Abs(w)
			total += math.Abs(w)
		}
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
