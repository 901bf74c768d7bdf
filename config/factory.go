package config

import (
	"fmt"

	"github.com/rushteam/matchkit/feature"
	"github.com/rushteam/matchkit/match"
	"github.com/rushteam/matchkit/model"
	"github.com/rushteam/matchkit/pipeline"
)

func init() {
	Register("match.feature", BuildFeatureNode)
	Register("match.eligibility", BuildEligibilityNode)
	Register("match.score", BuildScoreNode)
}

// BuildFeatureNode 构建特征补全 Node。
//
// 配置项：
//   - renormalize: bool，对画像分类子区间做 min-max 重归一化
//   - without_metadata: bool，关闭元数据分类
func BuildFeatureNode(nc pipeline.NodeConfig) (pipeline.Node, error) {
	var opts []feature.Option
	if nc.Bool("renormalize", false) {
		opts = append(opts, feature.WithRenormalize())
	}
	if nc.Bool("without_metadata", false) {
		opts = append(opts, feature.WithoutMetadata())
	}
	return &match.FeatureNode{Extractor: feature.NewExtractor(opts...)}, nil
}

// BuildEligibilityNode 构建硬性条件过滤 Node。
//
// 配置项：
//   - rules: []string，CEL 表达式列表（AND 关系）
func BuildEligibilityNode(nc pipeline.NodeConfig) (pipeline.Node, error) {
	rules := nc.Strings("rules")
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules not found or empty")
	}
	return &match.EligibilityNode{Rules: rules}, nil
}

// BuildScoreNode 构建线性模型打分 Node。
//
// 配置项：
//   - weights: []float64，线性权重（维度须与特征向量一致）
//   - bias: float64
//   - name: string，模型名（默认 "lr"）
func BuildScoreNode(nc pipeline.NodeConfig) (pipeline.Node, error) {
	weights := nc.Floats("weights")
	if len(weights) == 0 {
		return nil, fmt.Errorf("weights not found or empty")
	}
	bias := nc.Float64("bias", 0)
	name := nc.String("name", "lr")
	return &match.ScoreNode{Model: model.NewLinearModel(name, bias, weights)}, nil
}
