package model

// LinearModel 是线性族模型（logistic_regression / svm）的打分实现。
// 两者的参数形式一致：bias + 权重向量；SVM 的间隔值同样经过
// sigmoid 压缩成 [0, 1] 区间的分数，便于下游统一消费。
type LinearModel struct {
	name    string
	bias    float64
	weights []float64
}

// NewLinearModel 创建线性模型。
func NewLinearModel(name string, bias float64, weights []float64) *LinearModel {
	return &LinearModel{name: name, bias: bias, weights: weights}
}

// Name 返回模型名。
func (m *LinearModel) Name() string { return m.name }

// Predict 计算 sigmoid(bias + w·x)。
func (m *LinearModel) Predict(features []float64) (float64, error) {
	if len(features) != len(m.weights) {
		return 0, dimError(len(features), len(m.weights))
	}
	z := m.bias
	for i, w := range m.weights {
		z += w * features[i]
	}
	return Sigmoid(z), nil
}

// Weights 返回权重向量（共享底层数组，调用方只读）。
func (m *LinearModel) Weights() []float64 { return m.weights }

// Bias 返回偏置。
func (m *LinearModel) Bias() float64 { return m.bias }
