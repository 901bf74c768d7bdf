package core

import "time"

// Algorithm 是训练算法族的封闭枚举。
// Trainer 对每个成员提供独立的处理分支；未知取值直接失败，
// 新增算法是一次编译期可检查的添加，而不是字符串 fallthrough。
type Algorithm string

const (
	AlgorithmRandomForest       Algorithm = "random_forest"
	AlgorithmGradientBoosting   Algorithm = "gradient_boosting"
	AlgorithmNeuralNetwork      Algorithm = "neural_network"
	AlgorithmLogisticRegression Algorithm = "logistic_regression"
	AlgorithmSVM                Algorithm = "svm"
	AlgorithmXGBoost            Algorithm = "xgboost"
)

// Algorithms 返回全部受支持的算法（按声明顺序）。
func Algorithms() []Algorithm {
	return []Algorithm{
		AlgorithmRandomForest,
		AlgorithmGradientBoosting,
		AlgorithmNeuralNetwork,
		AlgorithmLogisticRegression,
		AlgorithmSVM,
		AlgorithmXGBoost,
	}
}

// Valid 检查算法是否属于封闭枚举。
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmRandomForest, AlgorithmGradientBoosting, AlgorithmNeuralNetwork,
		AlgorithmLogisticRegression, AlgorithmSVM, AlgorithmXGBoost:
		return true
	}
	return false
}

// ModelConfig 是一次训练运行的配置。
type ModelConfig struct {
	Name      string    `json:"name"`
	Algorithm Algorithm `json:"algorithm"`

	// MaxIterations 迭代步数上限（轮数 / epoch 数，按算法族解释）
	MaxIterations int `json:"max_iterations"`

	// LearningRate 学习率（梯度类算法使用）
	LearningRate float64 `json:"learning_rate"`

	// EarlyStoppingPatience 早停耐心窗口：最近 N 步损失未见改善则提前停止；
	// 0 表示关闭早停
	EarlyStoppingPatience int `json:"early_stopping_patience"`

	// EarlyStoppingTolerance 相对改善容差，默认 1e-4
	EarlyStoppingTolerance float64 `json:"early_stopping_tolerance"`

	// HiddenLayers 隐层结构（仅 neural_network 使用），默认 [16]
	HiddenLayers []int `json:"hidden_layers,omitempty"`

	// Regularization L2 正则系数（svm / xgboost 使用）
	Regularization float64 `json:"regularization"`

	// Seed 随机种子：同一配置 + 同一数据 → 同一模型
	Seed int64 `json:"seed"`

	// Hyperparameters 额外超参（网格搜索的落点记录在这里）
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
}

// ConfusionMatrix 是阈值 0.5 下的二分类混淆矩阵。
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	TrueNegative  int `json:"true_negative"`
	FalsePositive int `json:"false_positive"`
	FalseNegative int `json:"false_negative"`
}

// ModelMetrics 是一次评估得到的指标快照。
// 评估是预测值与标注的纯函数，不允许任何隐藏随机性。
type ModelMetrics struct {
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	AUC       float64         `json:"auc"`
	Loss      float64         `json:"loss"`
	Confusion ConfusionMatrix `json:"confusion"`
}

// TrainingStep 是训练进度序列中的一步。
// Failed 标记失败/取消的终态事件，此时 Progress 停留在中断处。
type TrainingStep struct {
	Iteration int     `json:"iteration"`
	Progress  float64 `json:"progress"` // [0, 1]
	Loss      float64 `json:"loss"`
	Failed    bool    `json:"failed,omitempty"`
}

// DecisionStump 是单特征单阈值的弱学习器，是树族算法的参数单元。
type DecisionStump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`  // value <= threshold 时的输出
	Right     float64 `json:"right"` // value > threshold 时的输出
	Weight    float64 `json:"weight"`
}

// ModelParameters 是复现打分所需的全部学习参数（按算法族取子集）。
type ModelParameters struct {
	// 线性族（logistic_regression / svm）
	Bias    float64   `json:"bias"`
	Weights []float64 `json:"weights,omitempty"`

	// 树族（random_forest / gradient_boosting / xgboost）
	Stumps []DecisionStump `json:"stumps,omitempty"`

	// 神经网络族：Layers[i] 为各层神经元数（含输入层），
	// LayerWeights[l][j][k] 为第 l 层第 j 个神经元对第 k 个输入的权重
	Layers       []int         `json:"layers,omitempty"`
	LayerWeights [][][]float64 `json:"layer_weights,omitempty"`
	LayerBiases  [][]float64   `json:"layer_biases,omitempty"`

	// FeatureImportance 特征重要度（所有算法族都填充，用于解释）
	FeatureImportance []float64 `json:"feature_importance,omitempty"`
}

// ModelMetadata 是模型工件的训练上下文。
type ModelMetadata struct {
	TrainingHistory []TrainingStep     `json:"training_history,omitempty"`
	Hyperparameters map[string]float64 `json:"hyperparameters,omitempty"`
	TrainingTime    time.Duration      `json:"training_time"`
	TrainSamples    int                `json:"train_samples"`
	FeatureDim      int                `json:"feature_dim"`
}

// MLModel 是不可变的模型工件。
//
// 生命周期：
//   - Trainer 在训练结束时创建；重训产生新 id/version 的新工件，绝不原地修改
//   - Active 的晋升由外部决策（通常依据 A/B 结果），通过 Registry 落盘
type MLModel struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Version    string          `json:"version"`
	Algorithm  Algorithm       `json:"algorithm"`
	Parameters ModelParameters `json:"parameters"`
	Metrics    ModelMetrics    `json:"metrics"`
	Metadata   ModelMetadata   `json:"metadata"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
