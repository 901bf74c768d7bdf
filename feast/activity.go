package feast

import (
	"context"
	"math"

	"github.com/rushteam/matchkit/core"
)

// 默认的活跃度特征与实体键
const (
	DefaultActivityFeature = "profile_stats:activity_score"
	DefaultEntityKey       = "profile_id"
)

// ActivityProvider 把 Feast 在线特征适配成特征抽取器的活跃度信号源。
//
// 约定特征值已归一化到 [0, 1]；越界值在此处截断，缺失值报 NOT_FOUND，
// 由抽取器回退到本地推算。
type ActivityProvider struct {
	client    Client
	feature   string
	entityKey string
}

// ActivityOption 配置 ActivityProvider。
type ActivityOption func(*ActivityProvider)

// WithActivityFeature 指定活跃度特征名称。
func WithActivityFeature(name string) ActivityOption {
	return func(p *ActivityProvider) { p.feature = name }
}

// WithEntityKey 指定实体键名称。
func WithEntityKey(key string) ActivityOption {
	return func(p *ActivityProvider) { p.entityKey = key }
}

// NewActivityProvider 创建活跃度信号源。
func NewActivityProvider(client Client, opts ...ActivityOption) *ActivityProvider {
	p := &ActivityProvider{
		client:    client,
		feature:   DefaultActivityFeature,
		entityKey: DefaultEntityKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ActivityScore 拉取单个画像的活跃度评分。
func (p *ActivityProvider) ActivityScore(ctx context.Context, profileID string) (float64, error) {
	if profileID == "" {
		return 0, core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation, "feast: profile id is required")
	}

	resp, err := p.client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   []string{p.feature},
		EntityRows: []map[string]interface{}{{p.entityKey: profileID}},
	})
	if err != nil {
		return 0, err
	}
	if len(resp.FeatureVectors) == 0 {
		return 0, core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFound, "feast: no feature vector returned")
	}

	raw, ok := resp.FeatureVectors[0].Values[p.feature]
	if !ok {
		return 0, core.NewDomainError(core.ModuleFeature, core.ErrorCodeNotFound, "feast: activity feature missing")
	}
	score, ok := raw.(float64)
	if !ok || math.IsNaN(score) {
		return 0, core.NewDomainError(core.ModuleFeature, core.ErrorCodeValidation, "feast: activity feature is not numeric")
	}

	// 截断到 [0, 1]
	return math.Min(1, math.Max(0, score)), nil
}
