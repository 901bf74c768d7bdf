package feast

import (
	"context"
	"fmt"
	"strconv"
	"time"

	feastsdk "github.com/feast-dev/feast/sdk/go"
)

// GrpcClient 是基于官方 Feast Go SDK 的 gRPC 客户端实现。
type GrpcClient struct {
	client *feastsdk.GrpcClient

	// Project 项目名称
	Project string

	// Endpoint 服务端点
	Endpoint string
}

// NewGrpcClient 创建 Feast gRPC 客户端。port 为 0 时使用默认端口 6565。
func NewGrpcClient(host string, port int, project string, opts ...ClientOption) (*GrpcClient, error) {
	if port == 0 {
		port = 6565
	}

	config := &ClientConfig{
		Endpoint: fmt.Sprintf("%s:%d", host, port),
		Project:  project,
		Timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(config)
	}

	var client *feastsdk.GrpcClient
	var err error
	if config.Auth != nil && config.Auth.Type == "static" && config.Auth.Token != "" {
		credential := feastsdk.NewStaticCredential(config.Auth.Token)
		security := feastsdk.SecurityConfig{
			EnableTLS:  false,
			Credential: credential,
		}
		client, err = feastsdk.NewSecureGrpcClient(host, port, security)
	} else {
		client, err = feastsdk.NewGrpcClient(host, port)
	}
	if err != nil {
		return nil, fmt.Errorf("feast: create grpc client: %w", err)
	}

	return &GrpcClient{
		client:   client,
		Project:  project,
		Endpoint: config.Endpoint,
	}, nil
}

// GetOnlineFeatures 获取在线特征。
func (c *GrpcClient) GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error) {
	if len(req.Features) == 0 {
		return nil, fmt.Errorf("feast: features are required")
	}
	if len(req.EntityRows) == 0 {
		return nil, fmt.Errorf("feast: entity rows are required")
	}

	project := req.Project
	if project == "" {
		project = c.Project
	}
	if project == "" {
		return nil, fmt.Errorf("feast: project is required")
	}

	entityRows := make([]feastsdk.Row, len(req.EntityRows))
	for i, row := range req.EntityRows {
		entityRow := make(feastsdk.Row, len(row))
		for k, v := range row {
			switch val := v.(type) {
			case string:
				entityRow[k] = feastsdk.StrVal(val)
			case int:
				entityRow[k] = feastsdk.Int64Val(int64(val))
			case int64:
				entityRow[k] = feastsdk.Int64Val(val)
			case int32:
				entityRow[k] = feastsdk.Int64Val(int64(val))
			case float64:
				entityRow[k] = feastsdk.DoubleVal(val)
			case float32:
				entityRow[k] = feastsdk.FloatVal(val)
			case bool:
				entityRow[k] = feastsdk.BoolVal(val)
			case []byte:
				entityRow[k] = feastsdk.BytesVal(val)
			default:
				entityRow[k] = feastsdk.StrVal(fmt.Sprintf("%v", val))
			}
		}
		entityRows[i] = entityRow
	}

	sdkResp, err := c.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: req.Features,
		Entities: entityRows,
		Project:  project,
	})
	if err != nil {
		return nil, fmt.Errorf("feast: get online features: %w", err)
	}

	rows := sdkResp.Rows()
	if len(rows) != len(req.EntityRows) {
		return nil, fmt.Errorf("feast: response row count mismatch: expected %d, got %d", len(req.EntityRows), len(rows))
	}

	featureVectors := make([]FeatureVector, len(rows))
	for i, row := range rows {
		values := make(map[string]interface{}, len(req.Features))
		for _, name := range req.Features {
			if val, exists := row[name]; exists {
				if converted := fromSDKValue(val); converted != nil {
					values[name] = converted
				}
			}
		}
		featureVectors[i] = FeatureVector{
			Values:    values,
			EntityRow: req.EntityRows[i],
		}
	}

	return &GetOnlineFeaturesResponse{FeatureVectors: featureVectors}, nil
}

// Close 关闭客户端连接。
func (c *GrpcClient) Close() error {
	// 官方 SDK 未暴露显式 Close，连接由 gRPC 库管理
	c.client = nil
	return nil
}

// fromSDKValue 将 SDK 返回的特征值统一收敛为 float64 / string。
func fromSDKValue(val interface{}) interface{} {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case string:
		return v
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	case float64:
		return v
	case float32:
		return float64(v)
	case bool:
		if v {
			return float64(1)
		}
		return float64(0)
	case []byte:
		return string(v)
	default:
		strVal := fmt.Sprintf("%v", val)
		if f, err := strconv.ParseFloat(strVal, 64); err == nil {
			return f
		}
		return strVal
	}
}

var _ Client = (*GrpcClient)(nil)
