// Package feast 是 Feast Feature Store 的客户端与适配层。
//
// 匹配核心用它拉取画像无法承载的实时行为特征（登录频率、会话数等），
// 经 ActivityProvider 适配成特征抽取器可消费的活跃度评分。
package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Server 的客户端接口。
//
// 匹配场景只依赖在线特征（实时预测路径）；离线特征由训练数据管道
// 另行导出，不经过此接口。
type Client interface {
	// GetOnlineFeatures 获取在线特征（实时预测用）
	//
	// features 形如 ["profile_stats:login_rate"]，entityRows 形如
	// [{"profile_id": "p123"}]。返回与实体行一一对应的特征向量。
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["profile_stats:login_rate"]
	Features []string

	// EntityRows 实体行，例如 [{"profile_id": "p123"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，为空时使用客户端默认值）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Endpoint 服务端点
	Endpoint string

	// Project 项目名称
	Project string

	// Timeout 超时时间
	Timeout time.Duration

	// Auth 认证信息（可选）
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Type 认证类型：static（gRPC 静态 Token）
	Type string

	// Token Token（static auth）
	Token string
}

// WithTimeout 设置超时时间。
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 设置认证信息。
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
