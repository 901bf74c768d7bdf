package model

// MLP 是多层感知机的前向打分实现：隐层 ReLU 激活，输出层 sigmoid。
//
// 参数布局与 core.ModelParameters 的神经网络族字段一致：
// layers[0] 为输入维度，weights[l][j][k] 是第 l 层第 j 个神经元
// 对上一层第 k 个输出的权重。
type MLP struct {
	name    string
	layers  []int
	weights [][][]float64
	biases  [][]float64
}

// NewMLP 创建多层感知机。
func NewMLP(name string, layers []int, weights [][][]float64, biases [][]float64) *MLP {
	return &MLP{name: name, layers: layers, weights: weights, biases: biases}
}

// Name 返回模型名。
func (m *MLP) Name() string { return m.name }

// Predict 执行一次前向传播。
func (m *MLP) Predict(features []float64) (float64, error) {
	if len(m.layers) == 0 || len(features) != m.layers[0] {
		want := 0
		if len(m.layers) > 0 {
			want = m.layers[0]
		}
		return 0, dimError(len(features), want)
	}

	activation := features
	for l := 0; l < len(m.weights); l++ {
		next := make([]float64, len(m.weights[l]))
		last := l == len(m.weights)-1
		for j, neuron := range m.weights[l] {
			z := m.biases[l][j]
			for k, w := range neuron {
				z += w * activation[k]
			}
			if last {
				next[j] = Sigmoid(z)
			} else if z > 0 { // ReLU
				next[j] = z
			}
		}
		activation = next
	}
	return activation[0], nil
}
