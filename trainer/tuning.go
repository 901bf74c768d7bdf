package trainer

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/rushteam/matchkit/core"
)

// GridSearchResult 是一次网格搜索的产出。
type GridSearchResult struct {
	Best       *TrainResult       `json:"best"`
	BestParams map[string]float64 `json:"best_params"`
	Trials     int                `json:"trials"`
}

// GridSearch 在给定超参网格上逐组合训练，按评估准确率选优。
// 组合按键名与取值的字典序展开，结果可复现。
// 识别的键：learning_rate / max_iterations / regularization，
// 其余键透传到 ModelConfig.Hyperparameters。
func (t *Trainer) GridSearch(ctx context.Context, data *core.TrainingData, cfg core.ModelConfig, grid map[string][]float64) (*GridSearchResult, error) {
	if len(grid) == 0 {
		return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeValidation, "empty hyperparameter grid")
	}

	keys := make([]string, 0, len(grid))
	for k := range grid {
		if len(grid[k]) == 0 {
			return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeValidation, "empty grid dimension: "+k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := &GridSearchResult{}
	combo := make(map[string]float64, len(keys))

	var walk func(depth int) error
	walk = func(depth int) error {
		if depth == len(keys) {
			result.Trials++
			trial := applyCombo(cfg, combo)
			res, err := t.Train(ctx, data, trial)
			if err != nil {
				return err
			}
			t.logger.Debug("grid search trial",
				zap.Any("params", combo),
				zap.Float64("accuracy", res.Metrics.Accuracy))
			if result.Best == nil || res.Metrics.Accuracy > result.Best.Metrics.Accuracy {
				result.Best = res
				result.BestParams = cloneCombo(combo)
			}
			return nil
		}
		key := keys[depth]
		for _, v := range grid[key] {
			combo[key] = v
			if err := walk(depth + 1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	return result, nil
}

// applyCombo 把一组网格取值落到配置上。
func applyCombo(cfg core.ModelConfig, combo map[string]float64) core.ModelConfig {
	hp := make(map[string]float64, len(cfg.Hyperparameters)+len(combo))
	for k, v := range cfg.Hyperparameters {
		hp[k] = v
	}
	for k, v := range combo {
		switch k {
		case "learning_rate":
			cfg.LearningRate = v
		case "max_iterations":
			cfg.MaxIterations = int(v)
		case "regularization":
			cfg.Regularization = v
		}
		hp[k] = v
	}
	cfg.Hyperparameters = hp
	return cfg
}

func cloneCombo(combo map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(combo))
	for k, v := range combo {
		out[k] = v
	}
	return out
}

// CrossValidate 连续切分的 k 折交叉验证：第 i 折取样本区间
// [i*n/k, (i+1)*n/k) 作为评估集，其余为训练集。
// 按折序返回每折的评估指标，均值/方差等聚合由调用方自行计算。
func (t *Trainer) CrossValidate(ctx context.Context, set core.LabeledSet, k int, cfg core.ModelConfig) ([]core.ModelMetrics, error) {
	n := set.Len()
	if k < 2 || k > n {
		return nil, core.NewDomainError(core.ModuleTrainer, core.ErrorCodeValidation,
			"fold count must be in [2, sample count]")
	}

	folds := make([]core.ModelMetrics, 0, k)
	for fold := 0; fold < k; fold++ {
		lo := fold * n / k
		hi := (fold + 1) * n / k

		holdout := core.LabeledSet{
			Features: set.Features[lo:hi],
			Labels:   set.Labels[lo:hi],
		}
		train := core.LabeledSet{
			Features: append(append([][]float64{}, set.Features[:lo]...), set.Features[hi:]...),
			Labels:   append(append([]float64{}, set.Labels[:lo]...), set.Labels[hi:]...),
		}

		data := &core.TrainingData{Train: train, Validation: holdout, Test: holdout}
		res, err := t.Train(ctx, data, cfg)
		if err != nil {
			return nil, err
		}
		folds = append(folds, res.Metrics)
	}
	return folds, nil
}
