package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rushteam/matchkit/core"
)

const (
	// DefaultBaseURL 默认的 Embedding 服务地址（Ollama 兼容）。
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel 默认的 Embedding 模型。
	DefaultModel = "all-minilm:l6-v2"

	// DefaultDimensions 默认模型的向量维度。
	DefaultDimensions = 384

	// DefaultTimeout HTTP 请求超时。
	DefaultTimeout = 30 * time.Second

	apiPathEmbeddings = "/api/embeddings"
	apiPathTags       = "/api/tags"
)

// HTTPProvider 通过 Ollama 兼容的 HTTP API 生成 Embedding。
type HTTPProvider struct {
	baseURL    string
	model      string
	dimensions int
	client     *http.Client
}

// HTTPOption 配置 HTTPProvider。
type HTTPOption func(*HTTPProvider)

// WithBaseURL 设置服务地址。
func WithBaseURL(url string) HTTPOption {
	return func(p *HTTPProvider) { p.baseURL = url }
}

// WithModel 设置 Embedding 模型。
func WithModel(model string) HTTPOption {
	return func(p *HTTPProvider) { p.model = model }
}

// WithDimensions 设置期望的向量维度。
func WithDimensions(dims int) HTTPOption {
	return func(p *HTTPProvider) { p.dimensions = dims }
}

// WithTimeout 设置 HTTP 超时。
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(p *HTTPProvider) { p.client.Timeout = timeout }
}

// WithHTTPClient 注入自定义 HTTP 客户端。
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// NewHTTPProvider 创建 HTTP Embedding 服务。
func NewHTTPProvider(opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		dimensions: DefaultDimensions,
		client:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Embed 生成文本的 Embedding。任何网络或协议错误都返回
// 不可用错误，由调用方决定降级策略。
func (p *HTTPProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, unavailable(fmt.Sprintf("marshal request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+apiPathEmbeddings, bytes.NewReader(body))
	if err != nil {
		return nil, unavailable(fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, unavailable(fmt.Sprintf("send request: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unavailable(fmt.Sprintf("embedding service returned status %d", resp.StatusCode))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, unavailable(fmt.Sprintf("decode response: %v", err))
	}
	if p.dimensions > 0 && len(result.Embedding) != p.dimensions {
		return nil, unavailable(fmt.Sprintf("unexpected dimensions: got %d, want %d", len(result.Embedding), p.dimensions))
	}
	return result.Embedding, nil
}

// ModelName 返回模型名。
func (p *HTTPProvider) ModelName() string { return p.model }

// Dimensions 返回向量维度。
func (p *HTTPProvider) Dimensions() int { return p.dimensions }

// Ping 检查服务是否可达。
func (p *HTTPProvider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+apiPathTags, nil)
	if err != nil {
		return unavailable(fmt.Sprintf("create request: %v", err))
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return unavailable(fmt.Sprintf("embedding service unreachable: %v", err))
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unavailable(fmt.Sprintf("embedding service returned status %d", resp.StatusCode))
	}
	return nil
}

func unavailable(msg string) error {
	return core.NewDomainError(core.ModuleEmbedding, core.ErrorCodeUnavailable, msg)
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}
