package core

import "fmt"

// LabeledSet 是一组平行的特征向量与标注。
// 标注可以是二分类（0/1）或连续值；评估按阈值 0.5 二值化。
type LabeledSet struct {
	Features [][]float64 `json:"features"`
	Labels   []float64   `json:"labels"`
}

// Len 返回样本数。
func (s *LabeledSet) Len() int {
	return len(s.Features)
}

// TrainingData 是训练/验证/测试三个互不相交的样本集。
type TrainingData struct {
	Train      LabeledSet `json:"train"`
	Validation LabeledSet `json:"validation"`
	Test       LabeledSet `json:"test"`
}

// Validate 在任何训练步骤执行之前做快速失败校验（错误分类 1）：
//   - 训练集不能为空
//   - 验证集不能为空（早停依赖验证损失）
//   - 每个集合内特征与标注长度必须一致
//   - 所有样本的特征维度必须一致
func (d *TrainingData) Validate() error {
	if d.Train.Len() == 0 {
		return NewDomainError(ModuleTrainer, ErrorCodeValidation, "training data: empty training set")
	}
	if d.Validation.Len() == 0 {
		return NewDomainError(ModuleTrainer, ErrorCodeValidation, "training data: empty validation set")
	}
	sets := []struct {
		name string
		set  *LabeledSet
	}{
		{"train", &d.Train},
		{"validation", &d.Validation},
		{"test", &d.Test},
	}
	dim := -1
	for _, s := range sets {
		if len(s.set.Features) != len(s.set.Labels) {
			return NewDomainError(ModuleTrainer, ErrorCodeValidation,
				fmt.Sprintf("training data: %s features/labels length mismatch (%d != %d)",
					s.name, len(s.set.Features), len(s.set.Labels)))
		}
		for _, f := range s.set.Features {
			if dim < 0 {
				dim = len(f)
			}
			if len(f) != dim {
				return NewDomainError(ModuleTrainer, ErrorCodeValidation,
					fmt.Sprintf("training data: %s inconsistent feature dim (%d != %d)", s.name, len(f), dim))
			}
		}
	}
	if dim == 0 {
		return NewDomainError(ModuleTrainer, ErrorCodeValidation, "training data: zero-dimensional features")
	}
	return nil
}

// FeatureDim 返回特征维度（取训练集第一个样本）。
func (d *TrainingData) FeatureDim() int {
	if d.Train.Len() == 0 {
		return 0
	}
	return len(d.Train.Features[0])
}
